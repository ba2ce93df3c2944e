package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
)

// parseItem reads ID=QTY with an optional @PRICE and #SHOP suffix, e.g.
// "P1=3@9.50#Corner Store".
func parseItem(s string) (domain.DraftLineItem, error) {
	var item domain.DraftLineItem

	rest, shop, _ := strings.Cut(s, "#")
	item.ShopName = strings.TrimSpace(shop)

	rest, price, hasPrice := strings.Cut(rest, "@")
	if hasPrice {
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil || p.IsNegative() {
			return item, fmt.Errorf("item %q: invalid price %q", s, price)
		}
		item.Price = &p
	}

	id, qty, ok := strings.Cut(rest, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return item, fmt.Errorf("item %q: want ID=QTY", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil || n < 0 {
		return item, fmt.Errorf("item %q: invalid quantity %q", s, qty)
	}
	item.ProductID = id
	item.Quantity = n
	return item, nil
}

func parseItems(values []string) ([]domain.DraftLineItem, error) {
	items := make([]domain.DraftLineItem, 0, len(values))
	for _, v := range values {
		item, err := parseItem(v)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
