package presenter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"property-search/internal/models"
)

var plPrinter = message.NewPrinter(language.Polish)

// FormatPrice renders an amount the way Polish listings show it
func FormatPrice(price *float64) string {
	if price == nil || math.IsNaN(*price) {
		return "? PLN"
	}
	return plPrinter.Sprintf("%d PLN", int64(math.Round(*price)))
}

// Title is "City · TYPE"
func Title(l *models.Listing) string {
	city := l.City
	if city == "" {
		city = "?"
	}
	return fmt.Sprintf("%s · %s", city, l.TypeLabel())
}

// Details is "N m² · R rooms" with "?" for unknown values
func Details(l *models.Listing) string {
	area, rooms := "?", "?"
	if l.SquareM != nil {
		area = strconv.FormatFloat(*l.SquareM, 'f', -1, 64)
	}
	if l.Rooms != nil {
		rooms = strconv.Itoa(*l.Rooms)
	}
	return fmt.Sprintf("%s m² · %s rooms", area, rooms)
}

// Summary is the condensed text shown in the map info overlay
func Summary(l *models.Listing) string {
	return strings.Join([]string{Title(l), Details(l), FormatPrice(l.Price)}, "\n")
}
