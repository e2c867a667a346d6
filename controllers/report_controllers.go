package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/ekantin/canteen-app/models"
	"github.com/ekantin/canteen-app/utils"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// parseReportFilter reads the shared report query parameters.
func parseReportFilter(c *gin.Context) (start, end *time.Time, studentID *uint, txType string, err error) {
	if s := c.Query("start_date"); s != "" {
		t, parseErr := time.Parse("2006-01-02", s)
		if parseErr != nil {
			return nil, nil, nil, "", errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		start = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, parseErr := time.Parse("2006-01-02", s)
		if parseErr != nil {
			return nil, nil, nil, "", errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		// Include the whole end day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	if s := c.Query("student_id"); s != "" {
		id, parseErr := strconv.Atoi(s)
		if parseErr != nil {
			return nil, nil, nil, "", errors.New("invalid student_id")
		}
		uid := uint(id)
		studentID = &uid
	}
	txType = c.Query("type")
	if txType != "" && !models.IsValidTransactionType(txType) {
		return nil, nil, nil, "", errors.New("invalid transaction type")
	}
	return start, end, studentID, txType, nil
}

// GetTransactionReport returns filtered transactions plus per-type totals.
func (rc *ReportController) GetTransactionReport(c *gin.Context) {
	start, end, studentID, txType, err := parseReportFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	query := rc.DB.Model(&models.Transaction{}).Order("created_at DESC")
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var summary struct {
		TotalTopup    float64 `json:"total_topup"`
		TotalPurchase float64 `json:"total_purchase"`
		TotalRefund   float64 `json:"total_refund"`
		Net           float64 `json:"net"`
		Count         int     `json:"count"`
	}
	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTopup:
			summary.TotalTopup += t.Amount
		case models.TransactionPurchase:
			summary.TotalPurchase += t.Amount
		case models.TransactionRefund:
			summary.TotalRefund += t.Amount
		}
		summary.Net += t.Amount
	}
	summary.Count = len(transactions)

	utils.RespondJSON(c, http.StatusOK, "Transaction report", gin.H{
		"summary":      summary,
		"transactions": transactions,
	})
}

type categoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

type topSellingItem struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

// GetSalesReport aggregates completed orders: totals, top-selling items and
// revenue by menu category.
func (rc *ReportController) GetSalesReport(c *gin.Context) {
	var sales struct {
		TotalRevenue      float64           `json:"total_revenue"`
		TotalOrders       int64             `json:"total_orders"`
		AverageOrder      float64           `json:"average_order"`
		TopSellingItems   []topSellingItem  `json:"top_selling_items"`
		RevenueByCategory []categoryRevenue `json:"revenue_by_category"`
	}

	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&sales.TotalOrders)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&sales.TotalRevenue)

	if sales.TotalOrders > 0 {
		sales.AverageOrder = sales.TotalRevenue / float64(sales.TotalOrders)
	}

	rc.DB.Model(&models.OrderItem{}).
		Select("order_items.menu_item_id, menu_items.name, SUM(order_items.quantity) AS quantity, SUM(order_items.total_price) AS revenue").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusCompleted).
		Group("order_items.menu_item_id, menu_items.name").
		Order("quantity DESC").
		Limit(10).
		Scan(&sales.TopSellingItems)

	rc.DB.Model(&models.OrderItem{}).
		Select("menu_items.category, SUM(order_items.total_price) AS revenue").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusCompleted).
		Group("menu_items.category").
		Order("revenue DESC").
		Scan(&sales.RevenueByCategory)

	utils.RespondJSON(c, http.StatusOK, "Sales report", sales)
}

// GetDashboardStats collects the admin dashboard numbers.
func (rc *ReportController) GetDashboardStats(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalStudents int64   `json:"total_students"`
		TotalOrders   int64   `json:"total_orders"`
		TodayOrders   int64   `json:"today_orders"`
		TotalRevenue  float64 `json:"total_revenue"`
		TodayRevenue  float64 `json:"today_revenue"`
		TotalBalance  float64 `json:"total_balance"`
		OrderStats    struct {
			Pending   int64 `json:"pending"`
			Confirmed int64 `json:"confirmed"`
			Preparing int64 `json:"preparing"`
			Ready     int64 `json:"ready"`
			Completed int64 `json:"completed"`
			Cancelled int64 `json:"cancelled"`
		} `json:"order_stats"`
		LowStockItems []models.MenuItem `json:"low_stock_items"`
	}

	rc.DB.Model(&models.Student{}).Count(&stats.TotalStudents)
	rc.DB.Model(&models.Order{}).Count(&stats.TotalOrders)
	rc.DB.Model(&models.Order{}).Where("DATE(created_at) = ?", today).Count(&stats.TodayOrders)

	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TotalRevenue)
	rc.DB.Model(&models.Order{}).
		Where("status = ? AND DATE(created_at) = ?", models.OrderStatusCompleted, today).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.TodayRevenue)
	rc.DB.Model(&models.Student{}).
		Select("COALESCE(SUM(balance), 0)").Row().Scan(&stats.TotalBalance)

	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&stats.OrderStats.Pending)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusConfirmed).Count(&stats.OrderStats.Confirmed)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusPreparing).Count(&stats.OrderStats.Preparing)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusReady).Count(&stats.OrderStats.Ready)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&stats.OrderStats.Completed)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCancelled).Count(&stats.OrderStats.Cancelled)

	rc.DB.Where("stock_quantity < ?", 5).Order("stock_quantity asc").Find(&stats.LowStockItems)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// ExportPDF renders the sales report as a PDF with a revenue-by-category
// bar chart.
func (rc *ReportController) ExportPDF(c *gin.Context) {
	var totalRevenue float64
	var totalOrders int64
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&totalOrders)
	rc.DB.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&totalRevenue)

	var byCategory []categoryRevenue
	rc.DB.Model(&models.OrderItem{}).
		Select("menu_items.category, SUM(order_items.total_price) AS revenue").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusCompleted).
		Group("menu_items.category").
		Order("revenue DESC").
		Scan(&byCategory)

	var topItems []topSellingItem
	rc.DB.Model(&models.OrderItem{}).
		Select("order_items.menu_item_id, menu_items.name, SUM(order_items.quantity) AS quantity, SUM(order_items.total_price) AS revenue").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusCompleted).
		Group("order_items.menu_item_id, menu_items.name").
		Order("quantity DESC").
		Limit(10).
		Scan(&topItems)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "E-Kantin Pintar - Sales Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s", time.Now().Format("2 January 2006 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Completed orders: %d", totalOrders))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Total revenue: %s", utils.FormatRupiah(totalRevenue)))
	pdf.Ln(12)

	if chartPNG := renderCategoryChart(byCategory); chartPNG != nil {
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("category_chart", opts, bytes.NewReader(chartPNG))
		pdf.ImageOptions("category_chart", 15, pdf.GetY(), 180, 0, false, opts, 0, "")
		pdf.Ln(100)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Top selling items")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for i, item := range topItems {
		pdf.Cell(0, 6, fmt.Sprintf("%d. %s - %d sold, %s", i+1, item.Name, item.Quantity, utils.FormatRupiah(item.Revenue)))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sales-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// renderCategoryChart draws a bar chart of revenue per category, or nil if
// there is nothing to draw.
func renderCategoryChart(byCategory []categoryRevenue) []byte {
	if len(byCategory) == 0 {
		return nil
	}

	bars := make([]chart.Value, 0, len(byCategory))
	for _, cr := range byCategory {
		bars = append(bars, chart.Value{
			Label: cr.Category,
			Value: cr.Revenue,
		})
	}

	barChart := chart.BarChart{
		Title:    "Revenue by category",
		Width:    720,
		Height:   360,
		BarWidth: 80,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := barChart.Render(chart.PNG, &buf); err != nil {
		utils.ErrorLogger.Printf("Error rendering category chart: %v", err)
		return nil
	}
	return buf.Bytes()
}
