package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/giftledger/internal/i18n"
)

func TestFormatExpiration(t *testing.T) {
	if got := formatExpiration(i18n.LocaleZH, nil); got != "长期有效" {
		t.Fatalf("expected no-expiry text, got: %s", got)
	}
	expiresAt := time.Date(2027, 3, 15, 10, 0, 0, 0, time.UTC)
	if got := formatExpiration(i18n.LocaleEN, &expiresAt); got != "2027-03-15" {
		t.Fatalf("expected formatted date, got: %s", got)
	}
}

func TestGiftCardEmailContentLocales(t *testing.T) {
	tests := []struct {
		name         string
		locale       string
		key          string
		wantContains string
	}{
		{name: "issued_zh", locale: i18n.LocaleZH, key: "email.gift_card_issued.subject", wantContains: "礼品卡"},
		{name: "issued_tw", locale: i18n.LocaleTW, key: "email.gift_card_issued.subject", wantContains: "禮品卡"},
		{name: "issued_en", locale: i18n.LocaleEN, key: "email.gift_card_issued.subject", wantContains: "gift card"},
		{name: "transferred_en", locale: i18n.LocaleEN, key: "email.gift_card_transferred.subject", wantContains: "transferred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := i18n.T(tt.locale, tt.key)
			if !strings.Contains(strings.ToLower(got), strings.ToLower(tt.wantContains)) {
				t.Fatalf("subject missing %q: %s", tt.wantContains, got)
			}
		})
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
