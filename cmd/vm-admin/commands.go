package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
)

type app struct {
	out     io.Writer
	auth    service.AuthService
	catalog service.CatalogService
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"create-user":    createUser,
	"create-product": createProduct,
	"list-products":  listProducts,
	"create-slot":    createSlot,
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: vm-admin <command> [flags]")
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func createUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create-user", a.out)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "password, 8 to 72 characters")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.CreateUser(ctx, service.CreateUserParams{
		Username:  *username,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(a.out, "created user %s (%s)\n", user.Username, user.ID)
	return nil
}

func createProduct(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create-product", a.out)
	name := fs.String("name", "", "product name")
	price := fs.String("price", "", "unit price, e.g. 10.40")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", *price, err)
	}

	product, err := a.catalog.CreateProduct(ctx, service.CreateProductParams{Name: *name, Price: p})
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	fmt.Fprintf(a.out, "created product %s (%s) at %s\n",
		product.Name, product.ID, product.Price.StringFixed(model.CurrencyPlaces))
	return nil
}

func listProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list-products", a.out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(model.CurrencyPlaces))
	}
	return tw.Flush()
}

func createSlot(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create-slot", a.out)
	productID := fs.String("product", "", "product id")
	quantity := fs.Int("quantity", 0, "units held, 0 to 100")
	row := fs.Int("row", 0, "row, 1 to 10")
	column := fs.Int("column", 0, "column, 1 to 10")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *productID == "" {
		return errors.New("-product is required")
	}
	id, err := uuid.Parse(*productID)
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", *productID, err)
	}

	slot, err := a.catalog.CreateSlot(ctx, service.CreateSlotParams{
		ProductID: id,
		Quantity:  *quantity,
		Row:       *row,
		Column:    *column,
	})
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	fmt.Fprintf(a.out, "created slot %s at row %d column %d with %d units\n",
		slot.ID, slot.Row, slot.Column, slot.Quantity)
	return nil
}
