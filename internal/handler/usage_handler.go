package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizduel-api/internal/domain/entity"
	"github.com/yourusername/quizduel-api/internal/service"
)

// UsageHandler обрабатывает запросы квот и административный экспорт итогов
type UsageHandler struct {
	usageService  *service.UsageService
	resultService *service.ResultService
}

// NewUsageHandler создает новый обработчик квот
func NewUsageHandler(usageService *service.UsageService, resultService *service.ResultService) *UsageHandler {
	return &UsageHandler{
		usageService:  usageService,
		resultService: resultService,
	}
}

// GetDailyLimits возвращает лимиты и счётчики текущего пользователя
// GET /api/limits
func (h *UsageHandler) GetDailyLimits(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	limits, err := h.usageService.GetDailyLimits(userID)
	if err != nil {
		handleGameError(c, err)
		return
	}

	c.JSON(http.StatusOK, limits)
}

// ExportResults экспортирует последние итоги матчей в CSV или Excel
// GET /api/admin/results/export?format=csv|xlsx&limit=
func (h *UsageHandler) ExportResults(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))

	results, err := h.resultService.ListRecentResults(limit)
	if err != nil {
		handleGameError(c, err)
		return
	}

	filename := fmt.Sprintf("match_results_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		h.exportCSV(c, results, filename)
	}
}

// exportCSV экспортирует итоги в CSV с правильным экранированием спецсимволов
func (h *UsageHandler) exportCSV(c *gin.Context, results []entity.MatchResult, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Матч", "Игрок 1", "Игрок 2", "Очки 1", "Очки 2", "Время 1 (сек)", "Время 2 (сек)", "Победитель", "Ничья", "Завершён"})

	for _, r := range results {
		winner := ""
		if r.WinnerID != nil {
			winner = strconv.FormatUint(uint64(*r.WinnerID), 10)
		}
		draw := "Нет"
		if r.IsDraw {
			draw = "Да"
		}

		writer.Write([]string{
			strconv.FormatUint(uint64(r.MatchID), 10),
			strconv.FormatUint(uint64(r.Player1ID), 10),
			strconv.FormatUint(uint64(r.Player2ID), 10),
			strconv.Itoa(r.Player1Score),
			strconv.Itoa(r.Player2Score),
			strconv.Itoa(r.Player1TimeSec),
			strconv.Itoa(r.Player2TimeSec),
			winner,
			draw,
			r.CreatedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX экспортирует итоги в Excel через StreamWriter
func (h *UsageHandler) exportXLSX(c *gin.Context, results []entity.MatchResult, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Итоги матчей"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[UsageHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Матч", "Игрок 1", "Игрок 2", "Очки 1", "Очки 2", "Время 1 (сек)", "Время 2 (сек)", "Победитель", "Ничья", "Завершён"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[UsageHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range results {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		winner := ""
		if r.WinnerID != nil {
			winner = strconv.FormatUint(uint64(*r.WinnerID), 10)
		}
		draw := "Нет"
		if r.IsDraw {
			draw = "Да"
		}

		row := []interface{}{
			r.MatchID, r.Player1ID, r.Player2ID,
			r.Player1Score, r.Player2Score,
			r.Player1TimeSec, r.Player2TimeSec,
			winner, draw, r.CreatedAt.Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[UsageHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[UsageHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[UsageHandler] Ошибка записи Excel в response: %v", err)
	}
}
