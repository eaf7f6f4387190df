package pix

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// EMV tag identifiers for the merchant-presented BR Code layout.
const (
	tagPayloadFormat      = "00"
	tagInitiationMethod   = "01"
	tagMerchantAccount    = "26"
	tagMerchantCategory   = "52"
	tagCurrency           = "53"
	tagAmount             = "54"
	tagCountryCode        = "58"
	tagMerchantName       = "59"
	tagMerchantCity       = "60"
	tagAdditionalData     = "62"
	tagCRC                = "63"
	subTagGUI             = "00"
	subTagKey             = "01"
	subTagDescription     = "02"
	subTagReferenceLabel  = "05"
)

const (
	pixGUI            = "br.gov.bcb.pix"
	chargeDescription = "SIGNEA"
	currencyBRL       = "986"
	countryBR         = "BR"

	maxKeyLen          = 77
	maxTxIDLen         = 25
	maxMerchantName    = 25
	maxMerchantCity    = 15
	maxFieldLen        = 99
)

// ValidationError reports a charge request the codec refuses to encode.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pix: invalid %s: %s", e.Field, e.Reason)
}

// ErrBadChecksum indicates a payload whose trailing CRC does not match its body.
var ErrBadChecksum = errors.New("pix: payload checksum mismatch")

// ChargeRequest carries the fields of a single offline PIX charge. It lives
// only for the duration of payload generation and is never persisted.
type ChargeRequest struct {
	PayeeKey     string
	MerchantName string
	MerchantCity string
	Amount       float64
	TxID         string
}

// Validate checks the request against the BR Code field constraints.
func (r ChargeRequest) Validate() error {
	if strings.TrimSpace(r.PayeeKey) == "" {
		return &ValidationError{Field: "payee key", Reason: "must not be empty"}
	}
	if len(r.PayeeKey) > maxKeyLen {
		return &ValidationError{Field: "payee key", Reason: fmt.Sprintf("longer than %d characters", maxKeyLen)}
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return &ValidationError{Field: "amount", Reason: "must be finite"}
	}
	if r.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if r.TxID == "" {
		return &ValidationError{Field: "transaction id", Reason: "must not be empty"}
	}
	if len(r.TxID) > maxTxIDLen {
		return &ValidationError{Field: "transaction id", Reason: fmt.Sprintf("longer than %d characters", maxTxIDLen)}
	}
	for _, c := range r.TxID {
		if !isAlnum(c) {
			return &ValidationError{Field: "transaction id", Reason: "must be alphanumeric"}
		}
	}
	return nil
}

// GeneratePayload assembles the complete BR Code string for the charge:
// the ordered TLV fields followed by "6304" and the CRC of everything before
// the checksum value. The initiation method is always "12"; charges issued so
// far carry that value, so it stays fixed for compatibility even though the
// payload is static.
func GeneratePayload(req ChargeRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	account, err := joinTLV(
		field{subTagGUI, pixGUI},
		field{subTagKey, req.PayeeKey},
		field{subTagDescription, chargeDescription},
	)
	if err != nil {
		return "", err
	}
	additional, err := joinTLV(field{subTagReferenceLabel, req.TxID})
	if err != nil {
		return "", err
	}

	body, err := joinTLV(
		field{tagPayloadFormat, "01"},
		field{tagInitiationMethod, "12"},
		field{tagMerchantAccount, account},
		field{tagMerchantCategory, "0000"},
		field{tagCurrency, currencyBRL},
		field{tagAmount, fmt.Sprintf("%.2f", req.Amount)},
		field{tagCountryCode, countryBR},
		field{tagMerchantName, truncate(req.MerchantName, maxMerchantName)},
		field{tagMerchantCity, truncate(req.MerchantCity, maxMerchantCity)},
		field{tagAdditionalData, additional},
	)
	if err != nil {
		return "", err
	}

	body += tagCRC + "04"
	return body + Checksum(body), nil
}

// ValidatePayload recomputes the checksum of a BR Code string and compares it
// with the trailing four characters.
func ValidatePayload(payload string) error {
	if len(payload) < 8 {
		return ErrBadChecksum
	}
	body := payload[:len(payload)-4]
	if Checksum(body) != payload[len(payload)-4:] {
		return ErrBadChecksum
	}
	return nil
}

type field struct {
	tag   string
	value string
}

// tlv renders one tag-length-value unit. The length field is fixed at two
// digits, so values beyond 99 characters cannot be represented.
func tlv(tag, value string) (string, error) {
	if len(value) > maxFieldLen {
		return "", &ValidationError{Field: "tlv " + tag, Reason: fmt.Sprintf("value longer than %d characters", maxFieldLen)}
	}
	return fmt.Sprintf("%s%02d%s", tag, len(value), value), nil
}

func joinTLV(fields ...field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		unit, err := tlv(f.tag, f.value)
		if err != nil {
			return "", err
		}
		b.WriteString(unit)
	}
	return b.String(), nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func isAlnum(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
