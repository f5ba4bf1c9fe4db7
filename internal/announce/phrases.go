package announce

import (
	"fmt"
	"strings"
)

// OrderPhrase is spoken when assembly of an order starts.
func OrderPhrase(orderNumber string) string {
	return "Заказ номер " + strings.TrimSpace(orderNumber)
}

// ItemPhrase is the item name alone for a single piece, otherwise the name
// followed by the quantity and the counted form of "штука".
func ItemPhrase(name string, quantity int) string {
	name = strings.TrimSpace(name)
	if quantity == 1 {
		return name
	}
	return fmt.Sprintf("%s, %d %s", name, quantity, PiecesWord(quantity))
}

// PiecesWord picks штука, штуки or штук for n.
func PiecesWord(n int) string {
	if n < 0 {
		n = -n
	}
	n100 := n % 100
	n10 := n % 10
	switch {
	case n100 >= 11 && n100 <= 14:
		return "штук"
	case n10 == 1:
		return "штука"
	case n10 >= 2 && n10 <= 4:
		return "штуки"
	default:
		return "штук"
	}
}

// OrderFileBase is the artifact path for an order announcement, before the
// provider picks the extension.
func OrderFileBase(orderNumber string) string {
	return "order_" + safeName(orderNumber)
}

// ItemFileBase is the artifact path for an item announcement.
func ItemFileBase(itemID int64) string {
	return fmt.Sprintf("item_%d", itemID)
}

// safeName keeps letters, digits, '-' and '_' so an order number cannot
// escape the audio directory.
func safeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
