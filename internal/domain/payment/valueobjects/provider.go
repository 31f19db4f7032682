package valueobjects

import (
	"fmt"
	"strings"
)

// Provider identifies an external payment gateway.
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderPayPal Provider = "paypal"
	ProviderIyzico Provider = "iyzico"
	ProviderPayTR  Provider = "paytr"
	ProviderMollie Provider = "mollie"
)

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown payment provider: %s", s)
	}
	return p, nil
}

func (p Provider) IsValid() bool {
	switch p {
	case ProviderStripe, ProviderPayPal, ProviderIyzico, ProviderPayTR, ProviderMollie:
		return true
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}

// DefaultMethod is the instrument family used when checkout names none.
func (p Provider) DefaultMethod() Method {
	switch p {
	case ProviderPayPal:
		return MethodWallet
	case ProviderMollie:
		return MethodBankRedirect
	default:
		return MethodCard
	}
}

// Method is the payment instrument family requested at checkout.
type Method string

const (
	MethodCard         Method = "card"
	MethodWallet       Method = "wallet"
	MethodBankRedirect Method = "bank_redirect"
	MethodBankTransfer Method = "bank_transfer"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCard, MethodWallet, MethodBankRedirect, MethodBankTransfer:
		return true
	}
	return false
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown payment method: %s", s)
	}
	return m, nil
}

func (m Method) String() string {
	return string(m)
}

// UIMode is how the checkout is presented to the buyer.
type UIMode string

const (
	// UIModeHosted redirects the buyer to a provider page.
	UIModeHosted UIMode = "hosted"
	// UIModeEmbedded mounts a provider widget using a "cs_" client secret.
	UIModeEmbedded UIMode = "embedded"
	// UIModeElements collects details in a client form using a secret that
	// contains "_secret_".
	UIModeElements UIMode = "elements"
)

func (m UIMode) IsValid() bool {
	switch m {
	case UIModeHosted, UIModeEmbedded, UIModeElements:
		return true
	}
	return false
}

func (m UIMode) String() string {
	return string(m)
}

// ClassifyUIMode infers the UI mode from the actionable checkout fields when
// the adapter did not report one.
func ClassifyUIMode(hostedURL, clientSecret string) UIMode {
	switch {
	case strings.HasPrefix(clientSecret, "cs_"):
		return UIModeEmbedded
	case strings.Contains(clientSecret, "_secret_"):
		return UIModeElements
	case hostedURL != "":
		return UIModeHosted
	case clientSecret != "":
		return UIModeElements
	}
	return ""
}
