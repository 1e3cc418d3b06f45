package ingest

import "strings"

// ColumnConfig maps each logical field to its ordered candidate substrings.
// Headers are matched case-insensitively: the first header (in original
// column order) containing any candidate wins the field.
type ColumnConfig map[Field][]string

// DefaultColumnConfig covers the header variants seen in the POS exports this
// app ingests (Russian "Отчет о среднем чеке" sheets and their English
// equivalents).
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		FieldDate:     {"операционный день", "дата", "date", "день"},
		FieldWaiter:   {"официант", "сотрудник", "waiter", "employee"},
		FieldRevenue:  {"продаж", "выручк", "revenue", "sales"},
		FieldGuests:   {"гост", "guest"},
		FieldChecks:   {"чек", "check"},
		FieldDishes:   {"блюд", "dish"},
		FieldRegister: {"касс", "register", "till"},
	}
}

// ResolveColumns maps sheet headers onto logical fields. Required fields that
// stay unmatched produce a MissingColumnError; unmatched optional fields are
// reported back and later read as constant zero.
func ResolveColumns(headers []string, cfg ColumnConfig, required ...Field) (map[Field]string, []Field, error) {
	if cfg == nil {
		cfg = DefaultColumnConfig()
	}

	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	resolved := make(map[Field]string, len(cfg))
	for field, candidates := range cfg {
		if header, ok := matchHeader(headers, lowered, candidates); ok {
			resolved[field] = header
		}
	}

	for _, field := range required {
		if _, ok := resolved[field]; !ok {
			return nil, nil, &MissingColumnError{Field: field, Headers: headers}
		}
	}

	// Only the metric fields are worth a diagnostic; an absent register
	// column is the common case, and required fields were checked above.
	var optional []Field
	for _, field := range []Field{FieldRevenue, FieldGuests, FieldChecks, FieldDishes} {
		if _, ok := cfg[field]; !ok {
			continue
		}
		if _, ok := resolved[field]; !ok {
			optional = append(optional, field)
		}
	}
	return resolved, optional, nil
}

func matchHeader(headers []string, lowered []string, candidates []string) (string, bool) {
	for i, h := range lowered {
		for _, cand := range candidates {
			if strings.Contains(h, cand) {
				return headers[i], true
			}
		}
	}
	return "", false
}
