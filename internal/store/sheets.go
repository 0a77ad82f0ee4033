package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"swaply/internal/domain"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheet (tab) names inside the backing spreadsheet.
const (
	booksSheet  = "Books"
	usersSheet  = "Users"
	ordersSheet = "Orders"
)

// Default 0-based column positions used when a header row lacks the expected
// name. They match the documented Books schema.
const (
	defaultStatusCol = 8
	defaultStockCol  = 9
)

// minBookRowWidth is the minimum number of cells a Books row must have to be
// mapped at all; shorter rows are skipped.
const minBookRowWidth = 4

var (
	bookHeader = []string{"id", "title", "author", "price", "condition", "isbn",
		"description", "category", "status", "stock_quantity", "timestamp", "image_url"}
	userHeader = []string{"user_id", "email", "name", "phone", "address_line1",
		"address_line2", "city", "state", "zip_code", "created_at", "updated_at"}
	orderHeader = []string{"order_id", "user_id", "user_email", "book_id", "book_title",
		"quantity", "total_price", "full_name", "phone", "address_line1",
		"address_line2", "city", "state", "zip_code", "payment_method",
		"status", "created_at"}
)

// Sheets is the remote backend, backed by one Google spreadsheet with three
// tabs. All reads fetch the full tab and resolve columns from the header row
// at call time.
type Sheets struct {
	log           *zap.Logger
	svc           *sheets.Service
	spreadsheetID string
}

// serviceAccountKey is the subset of the credentials file we validate before
// handing it to the API client.
type serviceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
}

// ConnectSheets validates the credentials file, builds a Sheets API client,
// probes read access to all three tabs and writes missing header rows.
// Failure of any step fails the whole connection; partially connected
// operation is not supported.
func ConnectSheets(ctx context.Context, log *zap.Logger, credentialsFile, spreadsheetID string) (*Sheets, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("credentials file: %w", err)
	}
	var key serviceAccountKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("credentials file is not valid JSON: %w", err)
	}
	if key.Type != "service_account" {
		return nil, fmt.Errorf("credentials file must be a service account key, got type %q", key.Type)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	s := &Sheets{log: log, svc: svc, spreadsheetID: spreadsheetID}

	for _, tab := range []string{booksSheet, usersSheet, ordersSheet} {
		values, err := s.readAll(ctx, tab)
		if err != nil {
			return nil, fmt.Errorf("read probe for %q (share the spreadsheet with %s): %w", tab, key.ClientEmail, err)
		}
		log.Info("Connected to sheet",
			zap.String("sheet", tab),
			zap.Int("rows", len(values)),
		)
	}

	if err := s.ensureHeaders(ctx); err != nil {
		return nil, fmt.Errorf("setup headers: %w", err)
	}
	return s, nil
}

// ensureHeaders writes the schema header row into any tab that is empty.
func (s *Sheets) ensureHeaders(ctx context.Context) error {
	for _, t := range []struct {
		name   string
		header []string
	}{
		{booksSheet, bookHeader},
		{usersSheet, userHeader},
		{ordersSheet, orderHeader},
	} {
		values, err := s.readAll(ctx, t.name)
		if err != nil {
			return err
		}
		if len(values) > 0 {
			continue
		}
		if err := s.appendRow(ctx, t.name, toCells(t.header)); err != nil {
			return err
		}
		s.log.Info("Header row created", zap.String("sheet", t.name))
	}
	return nil
}

func (s *Sheets) readAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	return resp.Values, nil
}

func (s *Sheets) appendRow(ctx context.Context, sheet string, row []interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, sheet, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

// updateRange writes values at an A1 range like "Books!I5".
func (s *Sheets) updateRange(ctx context.Context, a1 string, row []interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, a1, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", a1, err)
	}
	return nil
}

func (s *Sheets) ListBooks(ctx context.Context) ([]domain.Book, error) {
	values, err := s.readAll(ctx, booksSheet)
	if err != nil {
		return nil, err
	}
	if len(values) <= 1 {
		return []domain.Book{}, nil
	}
	header := headerStrings(values[0])
	books := make([]domain.Book, 0, len(values)-1)
	for _, row := range values[1:] {
		if len(row) < minBookRowWidth {
			continue
		}
		cells := rowMap(header, row)
		books = append(books, domain.Book{
			ID:            strings.TrimSpace(cells["id"]),
			Title:         cellOr(cells, "title", "Unknown Book"),
			Author:        cellOr(cells, "author", "Unknown Author"),
			Price:         ParsePrice(cells["price"]),
			Condition:     cellOr(cells, "condition", "Good"),
			ISBN:          cells["isbn"],
			Description:   cells["description"],
			Category:      cells["category"],
			Status:        cellOr(cells, "status", domain.StatusAvailable),
			StockQuantity: ParseStock(cells["stock_quantity"]),
			Timestamp:     cells["timestamp"],
			ImageURL:      strings.TrimSpace(cells["image_url"]),
		})
	}
	return books, nil
}

func (s *Sheets) AppendBook(ctx context.Context, b domain.Book) error {
	return s.appendRow(ctx, booksSheet, []interface{}{
		b.ID, b.Title, b.Author, b.Price, b.Condition, b.ISBN,
		b.Description, b.Category, b.Status, b.StockQuantity, b.Timestamp, b.ImageURL,
	})
}

func (s *Sheets) SetBookStatus(ctx context.Context, id, status string) (bool, error) {
	values, err := s.readAll(ctx, booksSheet)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	statusCol := headerIndex(values[0], "status", defaultStatusCol)
	rowNum, _, ok := findRowByID(values, id)
	if !ok {
		return false, nil
	}
	if err := s.updateRange(ctx, cellRef(booksSheet, statusCol, rowNum), []interface{}{status}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Sheets) DecreaseStock(ctx context.Context, id string, quantity int) (bool, error) {
	values, err := s.readAll(ctx, booksSheet)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	stockCol := headerIndex(values[0], "stock_quantity", defaultStockCol)
	statusCol := headerIndex(values[0], "status", defaultStatusCol)
	rowNum, row, ok := findRowByID(values, id)
	if !ok {
		return false, nil
	}

	current := DefaultStock
	if stockCol < len(row) {
		current = ParseStock(cellString(row[stockCol]))
	}
	next := current - quantity
	if next < 0 {
		next = 0
	}
	if err := s.updateRange(ctx, cellRef(booksSheet, stockCol, rowNum), []interface{}{next}); err != nil {
		return false, err
	}
	if next == 0 {
		if err := s.updateRange(ctx, cellRef(booksSheet, statusCol, rowNum), []interface{}{domain.StatusSoldOut}); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Sheets) ListUsers(ctx context.Context) ([]domain.User, error) {
	values, err := s.readAll(ctx, usersSheet)
	if err != nil {
		return nil, err
	}
	if len(values) <= 1 {
		return []domain.User{}, nil
	}
	header := headerStrings(values[0])
	users := make([]domain.User, 0, len(values)-1)
	for _, row := range values[1:] {
		if len(row) == 0 {
			continue
		}
		cells := rowMap(header, row)
		users = append(users, domain.User{
			UserID:       cells["user_id"],
			Email:        cells["email"],
			Name:         cells["name"],
			Phone:        cells["phone"],
			AddressLine1: cells["address_line1"],
			AddressLine2: cells["address_line2"],
			City:         cells["city"],
			State:        cells["state"],
			ZipCode:      cells["zip_code"],
			CreatedAt:    cells["created_at"],
			UpdatedAt:    cells["updated_at"],
		})
	}
	return users, nil
}

// UpsertUser overwrites the matching email's row in place, or appends.
// The email column is matched against the stored representation exactly.
func (s *Sheets) UpsertUser(ctx context.Context, u domain.User) error {
	values, err := s.readAll(ctx, usersSheet)
	if err != nil {
		return err
	}
	row := []interface{}{
		u.UserID, u.Email, u.Name, u.Phone, u.AddressLine1,
		u.AddressLine2, u.City, u.State, u.ZipCode, u.CreatedAt, u.UpdatedAt,
	}
	for i, existing := range values {
		if i == 0 {
			continue
		}
		if len(existing) > 1 && cellString(existing[1]) == u.Email {
			a1 := fmt.Sprintf("%s!A%d:K%d", usersSheet, i+1, i+1)
			return s.updateRange(ctx, a1, row)
		}
	}
	return s.appendRow(ctx, usersSheet, row)
}

func (s *Sheets) ListOrders(ctx context.Context) ([]domain.Order, error) {
	values, err := s.readAll(ctx, ordersSheet)
	if err != nil {
		return nil, err
	}
	if len(values) <= 1 {
		return []domain.Order{}, nil
	}
	header := headerStrings(values[0])
	orders := make([]domain.Order, 0, len(values)-1)
	for _, row := range values[1:] {
		if len(row) == 0 {
			continue
		}
		cells := rowMap(header, row)
		orders = append(orders, domain.Order{
			OrderID:       cells["order_id"],
			UserID:        cells["user_id"],
			UserEmail:     cells["user_email"],
			BookID:        cells["book_id"],
			BookTitle:     cells["book_title"],
			Quantity:      parseQuantity(cells["quantity"]),
			TotalPrice:    ParsePrice(cells["total_price"]),
			FullName:      cells["full_name"],
			Phone:         cells["phone"],
			AddressLine1:  cells["address_line1"],
			AddressLine2:  cells["address_line2"],
			City:          cells["city"],
			State:         cells["state"],
			ZipCode:       cells["zip_code"],
			PaymentMethod: cells["payment_method"],
			Status:        cells["status"],
			CreatedAt:     cells["created_at"],
		})
	}
	return orders, nil
}

func (s *Sheets) AppendOrder(ctx context.Context, o domain.Order) error {
	return s.appendRow(ctx, ordersSheet, []interface{}{
		o.OrderID, o.UserID, o.UserEmail, o.BookID, o.BookTitle,
		o.Quantity, o.TotalPrice, o.FullName, o.Phone, o.AddressLine1,
		o.AddressLine2, o.City, o.State, o.ZipCode, o.PaymentMethod,
		o.Status, o.CreatedAt,
	})
}

// findRowByID scans data rows for a first-cell match on the trimmed id.
// The returned row number is 1-based (sheet coordinates).
func findRowByID(values [][]interface{}, id string) (rowNum int, row []interface{}, ok bool) {
	want := strings.TrimSpace(id)
	for i, r := range values {
		if i == 0 {
			continue
		}
		if len(r) > 0 && strings.TrimSpace(cellString(r[0])) == want {
			return i + 1, r, true
		}
	}
	return 0, nil, false
}

// headerIndex resolves a column by header name, falling back to the
// documented default position when the header lacks the name.
func headerIndex(header []interface{}, name string, fallback int) int {
	for i, h := range header {
		if cellString(h) == name {
			return i
		}
	}
	return fallback
}

func headerStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cellString(v)
	}
	return out
}

// rowMap aligns a row to the header positionally; missing trailing cells
// read as empty strings.
func rowMap(header []string, row []interface{}) map[string]string {
	m := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			m[name] = cellString(row[i])
		} else {
			m[name] = ""
		}
	}
	return m
}

func cellOr(cells map[string]string, key, def string) string {
	if v := cells[key]; v != "" {
		return v
	}
	return def
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// cellRef builds an A1 reference from 0-based column and 1-based row.
func cellRef(sheet string, col, row int) string {
	return fmt.Sprintf("%s!%s%d", sheet, columnLetter(col), row)
}

// columnLetter converts a 0-based column index to its A1 letter(s).
func columnLetter(col int) string {
	letters := ""
	for col >= 0 {
		letters = string(rune('A'+col%26)) + letters
		col = col/26 - 1
	}
	return letters
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
