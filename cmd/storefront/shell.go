package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcmexdev/broaster-orders/internal/core/domain"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/orderapi"
	"github.com/jcmexdev/broaster-orders/internal/storefront"
)

const help = `commands:
  menu [category] [asc|desc]   show the menu (combo, individual, beverage, addon)
  add <id>                     add one unit of a menu item
  remove <id>                  drop a line from the cart
  qty <id> <n>                 set a line's quantity (0 removes it)
  cart                         show the cart and the total
  go <section>                 home, map, products, cart, personal, payment
  set <field> <value>          name, address, phone or email
  pay <method>                 cash, card or transfer
  submit                       place the order
  new                          start a new order after confirmation
  help
  quit`

// shell is the line-oriented view over a single Storefront.
type shell struct {
	sf  *storefront.Storefront
	out io.Writer
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "Pollo Broaster - type help for commands")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(s.out, "[%s] > ", s.sf.Wizard.Current())
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(s.out, "error:", describe(err))
		}
	}
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, help)
	case "menu":
		return s.menu(args)
	case "add":
		id, err := intArg(args, 0)
		if err != nil {
			return err
		}
		if err := s.sf.AddItem(id); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d item(s) in cart\n", s.sf.Cart.ItemCount())
	case "remove":
		id, err := intArg(args, 0)
		if err != nil {
			return err
		}
		s.sf.Cart.Remove(id)
		s.printCart()
	case "qty":
		id, err := intArg(args, 0)
		if err != nil {
			return err
		}
		n, err := intArg(args, 1)
		if err != nil {
			return err
		}
		s.sf.Cart.SetQuantity(id, n)
		s.printCart()
	case "cart":
		s.printCart()
	case "go":
		if len(args) != 1 {
			return errors.New("usage: go <section>")
		}
		return s.sf.Wizard.GoTo(storefront.Section(args[0]))
	case "set":
		return s.set(args)
	case "pay":
		if len(args) != 1 {
			return errors.New("usage: pay <cash|card|transfer>")
		}
		m, err := domain.ParsePaymentMethod(args[0])
		if err != nil {
			return err
		}
		return s.sf.Session.SelectPayment(m)
	case "submit":
		r, err := s.sf.Submit(ctx)
		if err != nil {
			return err
		}
		s.printReceipt(r)
	case "new":
		s.sf.StartNewOrder()
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func (s *shell) menu(args []string) error {
	var (
		category domain.Category
		by       domain.PriceSort
	)
	for _, a := range args {
		switch a {
		case string(domain.SortAsc), string(domain.SortDesc):
			by = domain.PriceSort(a)
		default:
			category = domain.Category(a)
		}
	}
	items := s.sf.Catalog.Filter(category, by)
	if len(items) == 0 {
		fmt.Fprintln(s.out, "nothing on the menu for that filter")
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(s.out, "%2d  %-20s $%8s  %s\n", it.ID, it.Name, it.UnitPrice.StringFixed(0), it.Description)
	}
	return nil
}

func (s *shell) set(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set <name|address|phone|email> <value>")
	}
	v := strings.Join(args[1:], " ")
	var p domain.ContactPatch
	switch args[0] {
	case "name":
		p.Name = &v
	case "address":
		p.Address = &v
	case "phone":
		p.Phone = &v
	case "email":
		p.Email = &v
	default:
		return fmt.Errorf("unknown field %q", args[0])
	}
	s.sf.Session.UpdateContact(p)
	return nil
}

func (s *shell) printCart() {
	if s.sf.Cart.IsEmpty() {
		fmt.Fprintln(s.out, "your cart is empty")
		return
	}
	for _, l := range s.sf.Cart.Lines() {
		fmt.Fprintf(s.out, "%2d  %-20s x%-3d $%8s\n", l.ItemID, l.Name, l.Quantity, l.Subtotal().StringFixed(0))
	}
	fmt.Fprintf(s.out, "    subtotal $%s  delivery $%s  total $%s\n",
		s.sf.Cart.Subtotal().StringFixed(0), s.sf.DeliveryFee().StringFixed(0), s.sf.Total().StringFixed(0))
}

func (s *shell) printReceipt(r *storefront.Receipt) {
	fmt.Fprintf(s.out, "order #%d confirmed, tracking code %s\n", r.OrderID, r.TrackingCode)
	fmt.Fprintf(s.out, "deliver to %s, %s (%s)\n", r.Contact.Name, r.Contact.Address, r.Contact.Phone)
	for _, l := range r.Lines {
		fmt.Fprintf(s.out, "  %-20s x%-3d $%8s\n", l.Name, l.Quantity, l.Subtotal().StringFixed(0))
	}
	fmt.Fprintf(s.out, "paid by %s, total $%s\n", r.Payment, r.Total.StringFixed(0))
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New("missing number")
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[i])
	}
	return n, nil
}

func describe(err error) string {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return verrs.Error()
	case errors.Is(err, orderapi.ErrTransport):
		return "we could not reach the restaurant, try again: " + err.Error()
	case errors.Is(err, domain.ErrSubmissionRejected):
		return "your order was not accepted, your cart is intact: " + err.Error()
	}
	return err.Error()
}
