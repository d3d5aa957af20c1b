package dto

import "ai-salesagent-be/pkg/topic"

type CompareInitResponse struct {
	TopicA topic.Topic `json:"topicA"`
	TopicB topic.Topic `json:"topicB"`
}
