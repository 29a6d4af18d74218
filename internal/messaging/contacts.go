package messaging

import "strings"

// Contacts maps spoken names onto addressable identities. Loaded from
// configuration; the zero value is usable.
type Contacts struct {
	Emails   map[string]string
	WhatsApp map[string]string
}

// normalizeName keeps the first spoken word, lowercased, so "Ram please"
// still resolves the contact "ram".
func normalizeName(text string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// EmailFor resolves a spoken recipient to an email address. A full
// address passes through; a known name maps through the contact book;
// anything else is treated as a gmail username.
func (c Contacts) EmailFor(spoken string) string {
	raw := strings.TrimSpace(spoken)
	if strings.Contains(raw, "@") {
		return strings.ReplaceAll(raw, " ", "")
	}
	key := normalizeName(raw)
	if key == "" {
		return ""
	}
	if addr, ok := c.Emails[key]; ok {
		return addr
	}
	return key + "@gmail.com"
}

// WhatsAppFor resolves a spoken recipient to a chat search string.
func (c Contacts) WhatsAppFor(spoken string) string {
	if name, ok := c.WhatsApp[normalizeName(spoken)]; ok {
		return name
	}
	return strings.TrimSpace(spoken)
}
