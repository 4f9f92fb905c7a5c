package analytics

import (
	"sort"
	"time"

	"rawmart-be/internal/order"

	"github.com/shopspring/decimal"
)

const TopMaterialsLimit = 10

type accumulator struct {
	revenue  decimal.Decimal
	quantity int
	orders   map[uint]struct{}
	vendors  map[uint]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		revenue: decimal.Zero,
		orders:  map[uint]struct{}{},
		vendors: map[uint]struct{}{},
	}
}

func (a *accumulator) add(s order.Sale) {
	a.revenue = a.revenue.Add(s.Revenue())
	a.quantity += s.Quantity
	a.orders[s.OrderID] = struct{}{}
	a.vendors[s.UserID] = struct{}{}
}

func (a *accumulator) bucket(key string) Bucket {
	return Bucket{Key: key, Revenue: a.revenue, Orders: len(a.orders), Quantity: a.quantity}
}

func (a *accumulator) point(period string) Point {
	return Point{Period: period, Revenue: a.revenue, Orders: len(a.orders), Quantity: a.quantity}
}

func groupBy(sales []order.Sale, key func(order.Sale) string) map[string]*accumulator {
	groups := map[string]*accumulator{}
	for _, s := range sales {
		k := key(s)
		a, ok := groups[k]
		if !ok {
			a = newAccumulator()
			groups[k] = a
		}
		a.add(s)
	}
	return groups
}

// byRevenue orders buckets by revenue, highest first, then by key.
func byRevenue(groups map[string]*accumulator) []Bucket {
	out := make([]Bucket, 0, len(groups))
	for k, a := range groups {
		out = append(out, a.bucket(k))
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Daily returns one point per day. With a bounded range every day in
// [from, to] is present, zero-filled.
func Daily(sales []order.Sale, from *time.Time, to time.Time) []Point {
	groups := groupBy(sales, func(s order.Sale) string {
		return s.CreatedAt.UTC().Format(dayLayout)
	})

	if from == nil {
		return sortedPoints(groups)
	}

	start := truncateDay(*from)
	end := truncateDay(to)
	out := []Point{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		if a, ok := groups[key]; ok {
			out = append(out, a.point(key))
			continue
		}
		out = append(out, Point{Period: key, Revenue: decimal.Zero})
	}
	return out
}

func Monthly(sales []order.Sale) []Point {
	return sortedPoints(groupBy(sales, func(s order.Sale) string {
		return s.CreatedAt.UTC().Format(monthLayout)
	}))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortedPoints(groups map[string]*accumulator) []Point {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Point, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k].point(k))
	}
	return out
}

func Categories(sales []order.Sale) []Bucket {
	return byRevenue(groupBy(sales, func(s order.Sale) string { return s.Category }))
}

func PaymentMethods(sales []order.Sale) []Bucket {
	return byRevenue(groupBy(sales, func(s order.Sale) string { return s.PaymentMethod }))
}

func StatusDistribution(sales []order.Sale) []Bucket {
	return byRevenue(groupBy(sales, func(s order.Sale) string { return string(s.Status) }))
}

type band struct {
	key string
	min decimal.Decimal
}

// bands must be sorted by min ascending.
func bandOf(bands []band, v decimal.Decimal) string {
	key := bands[0].key
	for _, b := range bands {
		if v.GreaterThanOrEqual(b.min) {
			key = b.key
		}
	}
	return key
}

func fixedBuckets(bands []band, sales []order.Sale, keyOf func(order.Sale) string) []Bucket {
	groups := groupBy(sales, keyOf)
	out := make([]Bucket, 0, len(bands))
	for _, b := range bands {
		a, ok := groups[b.key]
		if !ok {
			a = newAccumulator()
		}
		bucket := a.bucket(b.key)
		bucket.Vendors = len(a.vendors)
		out = append(out, bucket)
	}
	return out
}

var vendorSpendBands = []band{
	{"0-1000", decimal.Zero},
	{"1000-5000", decimal.NewFromInt(1000)},
	{"5000-10000", decimal.NewFromInt(5000)},
	{"10000+", decimal.NewFromInt(10000)},
}

// VendorSpend buckets vendors by their total spend with the supplier over
// the range. Every sale of a vendor lands in that vendor's bucket.
func VendorSpend(sales []order.Sale) []Bucket {
	spend := map[uint]decimal.Decimal{}
	for _, s := range sales {
		spend[s.UserID] = spend[s.UserID].Add(s.Revenue())
	}
	return fixedBuckets(vendorSpendBands, sales, func(s order.Sale) string {
		return bandOf(vendorSpendBands, spend[s.UserID])
	})
}

var orderSizeBands = []band{
	{"small", decimal.Zero},
	{"medium", decimal.NewFromInt(500)},
	{"large", decimal.NewFromInt(2000)},
	{"bulk", decimal.NewFromInt(5000)},
}

// OrderSizes buckets orders by the supplier's subtotal within each order.
func OrderSizes(sales []order.Sale) []Bucket {
	subtotal := map[uint]decimal.Decimal{}
	for _, s := range sales {
		subtotal[s.OrderID] = subtotal[s.OrderID].Add(s.Revenue())
	}
	return fixedBuckets(orderSizeBands, sales, func(s order.Sale) string {
		return bandOf(orderSizeBands, subtotal[s.OrderID])
	})
}

func TopMaterials(sales []order.Sale, limit int) []MaterialStat {
	type entry struct {
		stat MaterialStat
		acc  *accumulator
	}
	byID := map[uint]*entry{}
	for _, s := range sales {
		e, ok := byID[s.MaterialID]
		if !ok {
			e = &entry{
				stat: MaterialStat{MaterialID: s.MaterialID, Name: s.MaterialName, Category: s.Category},
				acc:  newAccumulator(),
			}
			byID[s.MaterialID] = e
		}
		e.acc.add(s)
	}

	out := make([]MaterialStat, 0, len(byID))
	for _, e := range byID {
		e.stat.Revenue = e.acc.revenue
		e.stat.Quantity = e.acc.quantity
		e.stat.Orders = len(e.acc.orders)
		out = append(out, e.stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].MaterialID < out[j].MaterialID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Build assembles every view from one set of sales.
func Build(tr TimeRange, from *time.Time, to time.Time, summary order.Analytics, sales []order.Sale) *Dashboard {
	return &Dashboard{
		TimeRange:          tr,
		From:               from,
		To:                 to,
		Summary:            summary,
		Daily:              Daily(sales, from, to),
		Monthly:            Monthly(sales),
		Categories:         Categories(sales),
		PaymentMethods:     PaymentMethods(sales),
		VendorSpend:        VendorSpend(sales),
		OrderSizes:         OrderSizes(sales),
		TopMaterials:       TopMaterials(sales, TopMaterialsLimit),
		StatusDistribution: StatusDistribution(sales),
	}
}
