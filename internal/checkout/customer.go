package checkout

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"go.uber.org/zap"
)

const newCustomerName = "New customer"

// resolveCustomer finds the customer with exactly this phone or registers a
// new one. Any failure leaves the sale anonymous.
func (o *Orchestrator) resolveCustomer(ctx context.Context, phone string, res *Result, log *zap.Logger) *domain.Customer {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}

	found, err := o.customers.SearchCustomers(ctx, phone)
	if err != nil {
		o.warn(res, log, "customer lookup failed, continuing without customer", err)
		return nil
	}
	for _, c := range found {
		if c.Phone == phone {
			c := c
			return &c
		}
	}

	created, err := o.customers.CreateCustomer(ctx, domain.CustomerCreate{
		Name:  newCustomerName,
		Phone: phone,
	})
	if err != nil {
		o.warn(res, log, "customer could not be created, continuing without customer", err)
		return nil
	}
	log.Info("customer created", zap.String("customer_id", created.ID))
	return created
}
