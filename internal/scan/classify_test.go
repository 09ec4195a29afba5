package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw     string
		kind    Kind
		content string
	}{
		{"https://example.com/a", KindURL, "https://example.com/a"},
		{"http://x", KindURL, "http://x"},
		{"mailto:a@b.c", KindEmail, "a@b.c"},
		{"tel:+100", KindPhone, "+100"},
		{"sms:+100", KindSMS, "+100"},
		{"geo:1,2", KindLocation, "1,2"},
		{"WIFI:S:net;T:WPA;P:pw;;", KindWiFi, "WIFI:S:net;T:WPA;P:pw;;"},
		{"BEGIN:VCARD\nFN:A\nEND:VCARD", KindContact, "BEGIN:VCARD\nFN:A\nEND:VCARD"},
		{"crypto:bc1q", KindWallet, "bc1q"},
		{"QUANTUM:eyJ2Ijoy", KindLayered, "QUANTUM:eyJ2Ijoy"},
		{"just text", KindText, "just text"},
		{"", KindText, ""},
		// регистр префикса значим
		{"quantum:abc", KindText, "quantum:abc"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			got := Classify(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.content, got.Content)
		})
	}
}
