// Package utils provides small formatting helpers for identity data returned
// by the lookup provider and for the record creation timestamp.
package utils

import "time"

const (
	// birthLayout is the timestamp pattern used by the lookup provider.
	birthLayout = "2006-01-02 15:04:05"
	// stampLayout is the creation timestamp stored in the "data" column.
	stampLayout = "15:04 - 02/01"

	// NotAvailable is the sentinel stored when the provider omits a value.
	NotAvailable = "N/A"
)

// FormatCPF groups an 11-digit national ID as XXX.XXX.XXX-XX.
// Input is assumed to be exactly 11 digits; callers validate before formatting.
func FormatCPF(cpf string) string {
	if len(cpf) != 11 {
		return cpf
	}
	return cpf[:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}

// FormatPhone groups an 11-digit mobile number as (XX)XXXXX-XXXX.
// Numbers of any other length are returned unchanged.
func FormatPhone(phone string) string {
	if len(phone) != 11 {
		return phone
	}
	return "(" + phone[:2] + ")" + phone[2:7] + "-" + phone[7:]
}

// FormatBirthDate converts the provider's "YYYY-MM-DD HH:MM:SS" timestamp to
// DD/MM/YYYY. Empty or unparseable input yields the NotAvailable sentinel.
func FormatBirthDate(s string) string {
	if s == "" {
		return NotAvailable
	}
	t, err := time.Parse(birthLayout, s)
	if err != nil {
		return NotAvailable
	}
	return t.Format("02/01/2006")
}

// CreationStamp formats now in loc as "HH:MM - DD/MM" for the "data" column.
// A nil loc falls back to the process-local zone.
func CreationStamp(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(stampLayout)
}
