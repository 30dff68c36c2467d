package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/session"
)

var (
	searchQuery string
	listLimit   int
	watchLimit  int

	orderMethod  string
	orderAddress string

	sellTitle       string
	sellDescription string
	sellPrice       float64
	sellCurrency    string
	sellImage       string
	sellGrowth      string
	sellMethods     []string

	communityName    string
	communityType    string
	communityPurpose string
	communityBio     string
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List plants and communities around you, nearest first",
	Args:  cobra.NoArgs,
	RunE:  runNearby,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep following your location and print the listings whenever they change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show your orders",
	Args:  cobra.NoArgs,
	RunE:  runOrders,
}

var orderCmd = &cobra.Command{
	Use:   "order <plant-id>",
	Short: "Order a plant",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrder,
}

var joinCmd = &cobra.Command{
	Use:   "join <community-id>",
	Short: "Join a community",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.session.JoinCommunity(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Joined %s\n", args[0])
			return nil
		})
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave <community-id>",
	Short: "Leave a community",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.session.LeaveCommunity(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Left %s\n", args[0])
			return nil
		})
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell",
	Short: "List a plant for sale at your current location",
	Args:  cobra.NoArgs,
	RunE:  runSell,
}

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Start a community at your current location",
	Args:  cobra.NoArgs,
	RunE:  runCommunity,
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in user and resolved location",
	Args:  cobra.NoArgs,
	RunE:  runMe,
}

func init() {
	nearbyCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Only plants whose title or description contains this")
	nearbyCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Rows per section, 0 for all")
	watchCmd.Flags().IntVarP(&watchLimit, "limit", "n", 5, "Rows per update, 0 for all")

	orderCmd.Flags().StringVarP(&orderMethod, "method", "m", string(entity.PaymentPickup), "Payment method: COD or Pickup")
	orderCmd.Flags().StringVarP(&orderAddress, "address", "a", "", "Delivery address, required for COD")

	sellCmd.Flags().StringVarP(&sellTitle, "title", "t", "", "Listing title")
	sellCmd.Flags().StringVarP(&sellDescription, "description", "d", "", "Listing description")
	sellCmd.Flags().Float64Var(&sellPrice, "price", 0, "Price")
	sellCmd.Flags().StringVar(&sellCurrency, "currency", "₹", "Currency symbol")
	sellCmd.Flags().StringVar(&sellImage, "image", "", "Image URL")
	sellCmd.Flags().StringVar(&sellGrowth, "growth", "", "Growth conditions")
	sellCmd.Flags().StringSliceVar(&sellMethods, "methods", nil, "Accepted payment methods (default COD,Pickup)")
	sellCmd.MarkFlagRequired("title")

	communityCmd.Flags().StringVar(&communityName, "name", "", "Community name")
	communityCmd.Flags().StringVar(&communityType, "type", string(entity.CommunityPermanent), "Permanent or Temporary")
	communityCmd.Flags().StringVar(&communityPurpose, "purpose", "", "What the community is for")
	communityCmd.Flags().StringVar(&communityBio, "bio", "", "Longer description")
	communityCmd.MarkFlagRequired("name")
}

func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(cmd.Context()))
	return fn(a)
}

func runNearby(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		out := cmd.OutOrStdout()
		catalog := a.session.Catalog()
		userID := a.session.User().ID

		printReference(out, catalog.Reference())
		printPlants(out, catalog.SearchPlants(searchQuery), listLimit)
		printCommunities(out, "Your communities", catalog.MyCommunities(userID), listLimit)
		printCommunities(out, "Communities nearby", catalog.NearbyCommunities(userID), listLimit)
		return nil
	})
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	return withApp(cmd, func(a *app) error {
		out := cmd.OutOrStdout()
		catalog := a.session.Catalog()
		var last *entity.Coordinate

		for {
			changes := a.session.Changes()

			ref := catalog.Reference()
			if ref != nil && (last == nil || *ref != *last) {
				printReference(out, ref)
				printPlants(out, catalog.Plants(), watchLimit)
				last = ref
				a.pushLocation(ctx)
			}
			if kind, failed := a.session.LastLocationError(); failed {
				fmt.Fprintf(out, "Location unavailable: %s\n", kind)
			}

			select {
			case <-ctx.Done():
				return nil
			case <-changes:
			}
		}
	})
}

func runOrders(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		printOrders(cmd.OutOrStdout(), a.session.Catalog().Orders())
		return nil
	})
}

func runOrder(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		order, err := a.session.PlaceOrder(cmd.Context(), args[0], entity.PaymentMethod(orderMethod), orderAddress)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed: %s for %s (%s)\n",
			order.ID, order.PlantTitle, formatPrice(order.Price, order.Currency), order.PaymentMethod)
		return nil
	})
}

func runSell(cmd *cobra.Command, args []string) error {
	methods := make([]entity.PaymentMethod, 0, len(sellMethods))
	for _, m := range sellMethods {
		methods = append(methods, entity.PaymentMethod(strings.TrimSpace(m)))
	}

	return withApp(cmd, func(a *app) error {
		plant, err := a.session.CreateListing(cmd.Context(), session.ListingInput{
			Title:            sellTitle,
			Description:      sellDescription,
			Price:            sellPrice,
			Currency:         sellCurrency,
			Image:            sellImage,
			GrowthConditions: sellGrowth,
			PaymentMethods:   methods,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Listed %s as %s at %s\n", plant.Title, plant.ID, plant.Location)
		return nil
	})
}

func runCommunity(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		community, err := a.session.CreateCommunity(cmd.Context(), session.CommunityInput{
			Name:    communityName,
			Type:    entity.CommunityType(communityType),
			Purpose: communityPurpose,
			Bio:     communityBio,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started %s (%s) at %s\n", community.Name, community.ID, community.Location)
		return nil
	})
}

func runMe(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		user := a.session.User()
		if a.remote != nil {
			if remote, err := a.remote.Me(cmd.Context()); err == nil {
				user.Name = remote.Name
				user.PhotoURL = remote.PhotoURL
			}
		}
		printUser(cmd.OutOrStdout(), user)
		return nil
	})
}
