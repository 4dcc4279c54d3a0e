package pricing

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	MonedaDefault = "ARS"
	LocaleDefault = "es-AR"
)

// FormatPrecioUnitario renders value as a localized currency amount followed
// by "/ <base>", e.g. "$ 4.000,00 / kg" for es-AR.
// Unknown currency codes or locales fall back to ARS / es-AR.
func FormatPrecioUnitario(value float64, base UnidadBase, moneda, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(LocaleDefault)
	}
	unit, err := currency.ParseISO(moneda)
	if err != nil {
		unit = currency.MustParseISO(MonedaDefault)
	}

	p := message.NewPrinter(tag)
	simbolo := p.Sprint(currency.NarrowSymbol(unit))
	return p.Sprintf("%s %.2f / %s", simbolo, value, string(base))
}
