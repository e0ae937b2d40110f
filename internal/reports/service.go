package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/internal/orders"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/scope"
)

// RangeInput bounds a report to orders created within [From, To).
type RangeInput struct {
	From *time.Time
	To   *time.Time
}

// Service aggregates order data into back-office reports.
type Service interface {
	Orders(ctx context.Context, actor scope.Actor) (*OrdersReportDTO, error)
	Revenue(ctx context.Context, actor scope.Actor, input RangeInput) (*RevenueReportDTO, error)
}

type service struct {
	orders orders.Repository
	repo   *Repository
	policy scope.Policy
}

// NewService constructs the reports service.
func NewService(ordersRepo orders.Repository, repo *Repository, policy scope.Policy) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("reports repository is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("scope policy is required")
	}
	return &service{orders: ordersRepo, repo: repo, policy: policy}, nil
}

// Orders counts the account's orders per lifecycle status.
func (s *service) Orders(ctx context.Context, actor scope.Actor) (*OrdersReportDTO, error) {
	accountFilter := s.policy.AccountFilter(actor)

	counts, err := s.orders.CountByStatus(ctx, accountFilter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	statuses := enums.OrderStatuses()
	report := &OrdersReportDTO{ByStatus: make(map[string]int64, len(statuses))}
	for _, status := range statuses {
		count := counts[status]
		report.ByStatus[status.String()] = count
		report.Total += count
	}
	return report, nil
}

// Revenue totals pay and mileage with a per-customer rollup, ordered by load
// pay descending. Cancelled orders never count toward revenue.
func (s *service) Revenue(ctx context.Context, actor scope.Actor, input RangeInput) (*RevenueReportDTO, error) {
	if input.From != nil && input.To != nil && !input.From.Before(*input.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range start must precede its end")
	}

	accountFilter := s.policy.AccountFilter(actor)
	rows, err := s.repo.ListRows(ctx, accountFilter, input.From, input.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report rows")
	}

	report := &RevenueReportDTO{
		TotalLoadPay:   decimal.Zero,
		TotalDriverPay: decimal.Zero,
		TotalMargin:    decimal.Zero,
	}
	perCustomer := make(map[string]*CustomerRevenueDTO)
	for _, row := range rows {
		if row.Status == enums.OrderStatusCancelled {
			continue
		}

		entry, ok := perCustomer[row.CustomerID.String()]
		if !ok {
			entry = &CustomerRevenueDTO{
				CustomerID:   row.CustomerID,
				CustomerName: row.CustomerName,
				LoadPay:      decimal.Zero,
				DriverPay:    decimal.Zero,
				Margin:       decimal.Zero,
			}
			perCustomer[row.CustomerID.String()] = entry
		}

		miles := int64(0)
		if row.Miles != nil {
			miles = int64(*row.Miles)
		}
		margin := row.LoadPay.Sub(row.DriverPay)

		entry.Orders++
		entry.Miles += miles
		entry.LoadPay = entry.LoadPay.Add(row.LoadPay)
		entry.DriverPay = entry.DriverPay.Add(row.DriverPay)
		entry.Margin = entry.Margin.Add(margin)

		report.Orders++
		report.TotalMiles += miles
		report.TotalLoadPay = report.TotalLoadPay.Add(row.LoadPay)
		report.TotalDriverPay = report.TotalDriverPay.Add(row.DriverPay)
		report.TotalMargin = report.TotalMargin.Add(margin)
	}

	report.Customers = make([]CustomerRevenueDTO, 0, len(perCustomer))
	for _, entry := range perCustomer {
		report.Customers = append(report.Customers, *entry)
	}
	sort.Slice(report.Customers, func(i, j int) bool {
		a, b := report.Customers[i], report.Customers[j]
		if !a.LoadPay.Equal(b.LoadPay) {
			return a.LoadPay.GreaterThan(b.LoadPay)
		}
		return a.CustomerName < b.CustomerName
	})
	return report, nil
}
