// Package scan определяет тип произвольной отсканированной строки по её префиксу.
package scan

import (
	"strings"

	"CodeVault/internal/codec"
)

// Kind — тип содержимого кода.
type Kind string

const (
	KindURL      Kind = "url"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindSMS      Kind = "sms"
	KindLocation Kind = "location"
	KindWiFi     Kind = "wifi"
	KindContact  Kind = "contact"
	KindWallet   Kind = "wallet"
	KindLayered  Kind = "layered"
	KindText     Kind = "text"
)

// Result — тип и полезная часть строки (без схемы, если она есть).
type Result struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}

type rule struct {
	prefix string
	kind   Kind
	strip  bool
}

// порядок важен: первый подошедший префикс выигрывает
var rules = []rule{
	{"http://", KindURL, false},
	{"https://", KindURL, false},
	{"mailto:", KindEmail, true},
	{"tel:", KindPhone, true},
	{"sms:", KindSMS, true},
	{"geo:", KindLocation, true},
	{"WIFI:", KindWiFi, false},
	{"BEGIN:VCARD", KindContact, false},
	{"crypto:", KindWallet, true},
	{codec.Marker, KindLayered, false},
}

// Classify возвращает тип строки. Всё, что не распознано, считается текстом.
func Classify(raw string) Result {
	for _, r := range rules {
		if !strings.HasPrefix(raw, r.prefix) {
			continue
		}
		content := raw
		if r.strip {
			content = strings.TrimPrefix(raw, r.prefix)
		}
		return Result{Kind: r.kind, Content: content}
	}
	return Result{Kind: KindText, Content: raw}
}
