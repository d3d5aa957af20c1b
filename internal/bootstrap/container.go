package bootstrap

import (
	"log"

	"ai-salesagent-be/internal/config"
	"ai-salesagent-be/internal/controller"
	"ai-salesagent-be/internal/pkg/logger"
	"ai-salesagent-be/internal/pkg/mailer"
	"ai-salesagent-be/internal/repository/memory"
	"ai-salesagent-be/internal/service"
	"ai-salesagent-be/pkg/answer"
	"ai-salesagent-be/pkg/embedding"
	"ai-salesagent-be/pkg/embedding/jina"
	"ai-salesagent-be/pkg/events"
	"ai-salesagent-be/pkg/extract/ocr"
	"ai-salesagent-be/pkg/extract/tika"
	"ai-salesagent-be/pkg/extract/webpage"
	"ai-salesagent-be/pkg/llm/factory"
	"ai-salesagent-be/pkg/speech/openaitts"
	"ai-salesagent-be/pkg/websearch/googlecse"
)

type Container struct {
	// Controllers
	TopicController   controller.ITopicController
	CompareController controller.ICompareController
	SalesController   controller.ISalesController
	SpeechController  controller.ISpeechController

	// Background Services (Exposed for main.go to run)
	EventLogService service.IEventLogService

	EventBus *events.Bus
	Logger   logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderEmail,
		cfg.SMTP.ManagerEmail,
	)

	// 2. Event Bus
	eventBus := events.NewBus()

	// 3. AI Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Extraction and Retrieval Infrastructure
	tikaExtractor := tika.NewTikaExtractor(cfg.Extras.TikaURL)
	pageExtractor := webpage.NewWebPageExtractor()
	ocrProvider := ocr.NewHTTPOCRProvider(cfg.Extras.OCREndpoint, cfg.Extras.OCRLang)
	searchProvider := googlecse.NewCSEProvider(cfg.Keys.GoogleSearch, cfg.Keys.GoogleSearchCx)
	ttsProvider := openaitts.NewOpenAITTSProvider(cfg.Extras.TTSBaseURL, cfg.Extras.TTSApiKey, cfg.Extras.TTSModel)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 5. Answer Pipeline
	webPipeline := answer.NewWebPipeline(searchProvider, pageExtractor, llmProvider, sysLogger)
	orchestrator := answer.NewOrchestrator(
		embeddingProvider,
		llmProvider,
		webPipeline,
		tikaExtractor,
		tikaExtractor,
		ocrProvider,
		pageExtractor,
		sysLogger,
	)

	eventLogService := service.NewEventLogService(eventBus, sysLogger)

	// 6. Controllers
	return &Container{
		TopicController:   controller.NewTopicController(orchestrator, sessionRepo, eventBus),
		CompareController: controller.NewCompareController(orchestrator, sessionRepo, eventBus),
		SalesController:   controller.NewSalesController(emailService, eventBus),
		SpeechController:  controller.NewSpeechController(ttsProvider),

		EventLogService: eventLogService,
		EventBus:        eventBus,
		Logger:          sysLogger,
	}
}
