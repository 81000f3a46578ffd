package event

import (
	"strings"
)

// FormatPrice renders a raw price as "Free" or "From $<amount>".
func FormatPrice(price string) string {
	price = strings.TrimSpace(price)
	if price == "" || price == "0" || strings.EqualFold(price, "free") {
		return "Free"
	}
	if strings.Contains(strings.ToLower(price), "from") {
		return price
	}
	if strings.Contains(price, "$") {
		return "From " + price
	}
	return "From $" + price
}

// PriceAmount keeps only digits and dots: "From $12.50" -> "12.50".
func PriceAmount(price string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, price)
}
