package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendLeadDryRun(t *testing.T) {
	svc := NewEmailService("", 0, "", "", "bot@example.com", "manager@example.com")

	sent, info := svc.SendLead("Lead: Acme X200", "body text")

	assert.False(t, sent)
	assert.Contains(t, info, "=== EMAIL PREVIEW (DRY RUN) ===")
	assert.Contains(t, info, "To: manager@example.com")
	assert.Contains(t, info, "From: bot@example.com")
	assert.Contains(t, info, "Subject: Lead: Acme X200")
	assert.Contains(t, info, "body text")
	assert.Equal(t, "manager@example.com", svc.ManagerEmail())
}

func TestBuildLeadSubject(t *testing.T) {
	tests := []struct {
		name    string
		product string
		user    string
		want    string
	}{
		{
			name:    "both provided",
			product: "Acme X200",
			user:    "Dana",
			want:    "Lead: Acme X200 - Price/Discount Inquiry from Dana",
		},
		{
			name:    "blank product falls back",
			product: "  ",
			user:    "Dana",
			want:    "Lead: Product - Price/Discount Inquiry from Dana",
		},
		{
			name:    "blank user falls back",
			product: "Acme X200",
			user:    "",
			want:    "Lead: Acme X200 - Price/Discount Inquiry from Prospect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildLeadSubject(tt.product, tt.user))
		})
	}
}

func TestBuildLeadBody(t *testing.T) {
	body := BuildLeadBody(LeadDetails{
		UserName:    "Dana",
		UserEmail:   "dana@example.com",
		UserPhone:   "+1 555 0100",
		ProductRef:  "Acme X200",
		Summary:     "Asked about bulk pricing twice.",
		BestTime:    "mornings",
		QuotedPrice: "$199",
	})

	for _, want := range []string{
		"Prospect: Dana",
		"Email:    dana@example.com",
		"Product:  Acme X200",
		"Quoted:   $199",
		"Best time to call: mornings",
		"Asked about bulk pricing twice.",
	} {
		assert.Contains(t, body, want)
	}

	minimal := BuildLeadBody(LeadDetails{UserName: "Dana", ProductRef: "Acme X200"})
	assert.False(t, strings.Contains(minimal, "Quoted:"))
	assert.False(t, strings.Contains(minimal, "Best time to call:"))
}
