package domain

import (
	"strings"

	"github.com/tidwall/gjson"
)

const legacyAddressPrefix = "Dirección:"

// DeliveryInfo is the structured delivery sub-record of an order.
type DeliveryInfo struct {
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Comments string `json:"comments"`
}

// IsZero reports whether no field is set.
func (d DeliveryInfo) IsZero() bool {
	return d.Address == "" && d.Phone == "" && d.Comments == ""
}

// ParseLegacyNotes converts the historical free-text customer notes column.
// Three encodings exist: a JSON object with direccion/telefono/comentarios
// keys, a "Dirección: <address>. <comments>" sentence, and plain comments.
func ParseLegacyNotes(notes string) DeliveryInfo {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return DeliveryInfo{}
	}
	if gjson.Valid(notes) {
		parsed := gjson.Parse(notes)
		if parsed.IsObject() {
			return DeliveryInfo{
				Address:  firstString(parsed, "direccion", "address"),
				Phone:    firstString(parsed, "telefono", "phone"),
				Comments: firstString(parsed, "comentarios", "comments"),
			}
		}
	}
	if strings.HasPrefix(notes, legacyAddressPrefix) {
		rest := strings.TrimPrefix(notes, legacyAddressPrefix)
		parts := strings.Split(rest, ".")
		address := strings.TrimSpace(parts[0])
		if address == "" {
			address = notes
		}
		return DeliveryInfo{
			Address:  address,
			Comments: strings.TrimSpace(strings.Join(parts[1:], ".")),
		}
	}
	return DeliveryInfo{Comments: notes}
}

func firstString(doc gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := doc.Get(key); v.Exists() {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}
