package order

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"labtest-be/internal/auth"
	"labtest-be/internal/logger"
	"labtest-be/internal/utils"

	"go.uber.org/zap"
)

// Unknown stands in for patient fields an order never recorded.
const Unknown = "N/A"

const defaultRelation = "family"

type TestSummary struct {
	OrderID    string `json:"orderId"`
	Name       string `json:"name"`
	Lab        string `json:"lab"`
	Date       string `json:"date"`
	Status     Status `json:"status"`
	TotalPrice int    `json:"totalPrice"`
}

type FamilyMember struct {
	ID          string        `json:"id"`
	MemberID    string        `json:"memberId"`
	Name        string        `json:"name"`
	Relation    string        `json:"relation"`
	Age         string        `json:"age"`
	Gender      string        `json:"gender"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	LastCheckup string        `json:"lastCheckup"`
	OrderCount  int           `json:"orderCount"`
	Tests       []TestSummary `json:"tests"`
}

func (s *service) ListFamily(ctx context.Context, actor auth.Identity) ([]FamilyMember, error) {
	if actor.ID == "" && actor.Email == "" {
		return nil, ErrForbidden
	}

	orders, err := s.repo.ListByOwner(ctx, OwnerQuery{
		UserID:      actor.ID,
		Email:       actor.Email,
		ExcludeSelf: true,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load family orders",
			zap.String("layer", "service"),
			zap.String("user_id", actor.ID),
			zap.Error(err),
		)
		return nil, err
	}
	return aggregateFamily(orders), nil
}

// aggregateFamily groups non-self orders by member id, or by name,
// relation and email when the order has no member id.
func aggregateFamily(orders []Order) []FamilyMember {
	members := map[string]*FamilyMember{}
	var keys []string

	for _, o := range orders {
		p := o.Patient
		if strings.TrimSpace(p.Name) == "" || p.Relation == RelationSelf {
			continue
		}
		relation := utils.Coalesce(defaultRelation, p.Relation)

		key := p.MemberID
		if key == "" {
			key = strings.ToLower(strings.Join([]string{p.Name, relation, p.Email}, "_"))
		}

		m, ok := members[key]
		if !ok {
			m = &FamilyMember{
				ID:       key,
				MemberID: utils.Coalesce(Unknown, p.MemberID),
				Name:     p.Name,
				Relation: relation,
				Age:      Unknown,
				Gender:   utils.Coalesce(Unknown, p.Gender),
				Email:    utils.Coalesce(Unknown, p.Email),
				Phone:    utils.Coalesce(Unknown, p.Phone),
				Tests:    []TestSummary{},
			}
			if p.Age != nil {
				m.Age = strconv.Itoa(*p.Age)
			}
			members[key] = m
			keys = append(keys, key)
		}

		m.OrderCount++
		if o.Appointment.Date > m.LastCheckup {
			m.LastCheckup = o.Appointment.Date
		}
		m.Tests = append(m.Tests, summarize(o))
	}

	out := make([]FamilyMember, 0, len(keys))
	for _, k := range keys {
		m := members[k]
		if m.LastCheckup == "" {
			m.LastCheckup = Unknown
		}
		out = append(out, *m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastCheckup, out[j].LastCheckup
		if a == Unknown || b == Unknown {
			return b == Unknown && a != Unknown
		}
		return a > b
	})
	return out
}

func summarize(o Order) TestSummary {
	names := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		names = append(names, it.TestName)
	}
	lab := Unknown
	if len(o.Items) > 0 && o.Items[0].Lab != "" {
		lab = o.Items[0].Lab
	}
	return TestSummary{
		OrderID:    o.ID,
		Name:       strings.Join(names, ", "),
		Lab:        lab,
		Date:       utils.Coalesce(Unknown, o.Appointment.Date),
		Status:     o.Status,
		TotalPrice: o.Pricing.Total,
	}
}
