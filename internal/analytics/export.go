package analytics

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

const (
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExportFilename    = "supplier-analytics.xlsx"
)

// WriteWorkbook writes the dashboard as one sheet per view.
func WriteWorkbook(d *Dashboard, w io.Writer) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return err
	}
	header(summary, "Metric", "Value")
	pair(summary, "Time range", string(d.TimeRange))
	pair(summary, "Total revenue", money(d.Summary.TotalRevenue))
	pair(summary, "Total orders", d.Summary.TotalOrders)
	pair(summary, "Total items", d.Summary.TotalItems)
	pair(summary, "Total vendors", d.Summary.TotalVendors)
	pair(summary, "Average order value", money(d.Summary.AverageOrderValue))

	if err := pointSheet(file, "Daily", "Date", d.Daily); err != nil {
		return err
	}
	if err := pointSheet(file, "Monthly", "Month", d.Monthly); err != nil {
		return err
	}

	buckets := []struct {
		name string
		rows []Bucket
	}{
		{"Categories", d.Categories},
		{"Payment Methods", d.PaymentMethods},
		{"Vendor Spend", d.VendorSpend},
		{"Order Sizes", d.OrderSizes},
		{"Order Status", d.StatusDistribution},
	}
	for _, b := range buckets {
		if err := bucketSheet(file, b.name, b.rows); err != nil {
			return err
		}
	}

	top, err := file.AddSheet("Top Materials")
	if err != nil {
		return err
	}
	header(top, "Material ID", "Name", "Category", "Revenue", "Quantity", "Orders")
	for _, m := range d.TopMaterials {
		row := top.AddRow()
		row.AddCell().SetValue(int(m.MaterialID))
		row.AddCell().SetValue(m.Name)
		row.AddCell().SetValue(m.Category)
		row.AddCell().SetValue(money(m.Revenue))
		row.AddCell().SetValue(m.Quantity)
		row.AddCell().SetValue(m.Orders)
	}

	return file.Write(w)
}

func header(sheet *xlsx.Sheet, titles ...string) {
	row := sheet.AddRow()
	for _, t := range titles {
		row.AddCell().SetValue(t)
	}
}

func pair(sheet *xlsx.Sheet, label string, v interface{}) {
	row := sheet.AddRow()
	row.AddCell().SetValue(label)
	row.AddCell().SetValue(v)
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func pointSheet(file *xlsx.File, name, period string, points []Point) error {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return err
	}
	header(sheet, period, "Revenue", "Orders", "Quantity")
	for _, p := range points {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.Period)
		row.AddCell().SetValue(money(p.Revenue))
		row.AddCell().SetValue(p.Orders)
		row.AddCell().SetValue(p.Quantity)
	}
	return nil
}

func bucketSheet(file *xlsx.File, name string, buckets []Bucket) error {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return err
	}
	header(sheet, "Bucket", "Revenue", "Orders", "Quantity", "Vendors")
	for _, b := range buckets {
		row := sheet.AddRow()
		row.AddCell().SetValue(b.Key)
		row.AddCell().SetValue(money(b.Revenue))
		row.AddCell().SetValue(b.Orders)
		row.AddCell().SetValue(b.Quantity)
		row.AddCell().SetValue(b.Vendors)
	}
	return nil
}
