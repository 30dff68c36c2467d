package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/domain/geo"
)

func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.1f km", km)
}

func formatPrice(price float64, currency string) string {
	return fmt.Sprintf("%s%.2f", currency, price)
}

func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func printReference(w io.Writer, ref *entity.Coordinate) {
	if ref == nil {
		fmt.Fprintln(w, "Location: unknown")
		return
	}
	fmt.Fprintf(w, "Location: %s\n", ref)
}

func printPlants(w io.Writer, plants []geo.Ranked[*entity.Plant], limit int) {
	fmt.Fprintf(w, "\nPlants (%d)\n", len(plants))
	if len(plants) == 0 {
		fmt.Fprintln(w, "  none nearby")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tTITLE\tPRICE\tDISTANCE\tSELLER\tPAYMENT")
	for _, r := range limited(plants, limit) {
		p := r.Item
		methods := make([]string, len(p.PaymentMethods))
		for i, m := range p.PaymentMethods {
			methods[i] = string(m)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, formatPrice(p.Price, p.Currency), formatDistance(r.DistanceKm), p.SellerName, strings.Join(methods, ","))
	}
	tw.Flush()
}

func printCommunities(w io.Writer, title string, communities []geo.Ranked[*entity.Community], limit int) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(communities))
	if len(communities) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tTYPE\tMEMBERS\tDISTANCE")
	for _, r := range limited(communities, limit) {
		c := r.Item
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Type, len(c.Members), formatDistance(r.DistanceKm))
	}
	tw.Flush()
}

func printOrders(w io.Writer, orders []*entity.Order) {
	fmt.Fprintf(w, "Orders (%d)\n", len(orders))
	if len(orders) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tPLANT\tPRICE\tPAYMENT\tSTATUS\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.PlantTitle, formatPrice(o.Price, o.Currency), o.PaymentMethod, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func printUser(w io.Writer, user *entity.User) {
	fmt.Fprintf(w, "ID:       %s\n", user.ID)
	fmt.Fprintf(w, "Name:     %s\n", user.Name)
	if user.Email != "" {
		fmt.Fprintf(w, "Email:    %s\n", user.Email)
	}
	if user.Location != nil {
		fmt.Fprintf(w, "Location: %s (updated %s)\n", user.Location, user.LocationUpdatedAt.Format("2006-01-02 15:04"))
	} else {
		fmt.Fprintln(w, "Location: unknown")
	}
}
