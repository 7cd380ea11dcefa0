package seed

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/seedtools/shopseed/internal/database"
)

// Runner executes one full-replace import run against a Store.
//
// The run is strictly sequential across entities because each child
// entity's foreign keys are validated against the identifiers accepted for
// its parent earlier in the same run.
type Runner struct {
	Store   Store
	Sources fs.FS

	// Now supplies the fallback timestamp for missing or unparsable
	// created fields. Defaults to time.Now.
	Now func() time.Time

	report *RunReport
}

// Run executes the pipeline: reset, then import each entity in dependency
// order. The returned report is always non-nil and describes how far the
// run got; on error its phase is PhaseFailed.
func (r *Runner) Run(ctx context.Context, runID string) (*RunReport, error) {
	if r.Now == nil {
		r.Now = time.Now
	}
	r.report = &RunReport{
		RunID:     runID,
		Phase:     PhaseResetting,
		StartedAt: time.Now(),
		// Preallocated so per-entity result pointers stay valid as
		// steps are appended.
		Entities: make([]EntityResult, 0, len(ImportOrder)),
	}

	err := r.run(ctx)

	r.report.FinishedAt = time.Now()
	if err != nil {
		r.report.Phase = PhaseFailed
		r.report.Error = err.Error()
		slog.Error("import run failed", "run_id", runID, "error", err)
		return r.report, err
	}

	r.report.Phase = PhaseDone
	return r.report, nil
}

func (r *Runner) run(ctx context.Context) error {
	if err := r.reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	userIDs, err := r.importProductsAndUsers(ctx)
	if err != nil {
		return err
	}

	if err := r.importAddresses(ctx, userIDs); err != nil {
		return err
	}

	if err := r.importCarts(ctx, userIDs); err != nil {
		return err
	}

	orderIDs, err := r.importOrders(ctx, userIDs)
	if err != nil {
		return err
	}

	return r.importOrderProducts(ctx, orderIDs)
}

// reset clears all six tables in reverse dependency order so no delete can
// orphan a row mid-run.
func (r *Runner) reset(ctx context.Context) error {
	slog.Info("clearing existing data")
	resets := []func(context.Context) error{
		r.Store.ResetCarts,
		r.Store.ResetAddresses,
		r.Store.ResetOrderProducts,
		r.Store.ResetOrders,
		r.Store.ResetProducts,
		r.Store.ResetUsers,
	}
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) importProductsAndUsers(ctx context.Context) (IDSet, error) {
	// Products: no empty guard, no cross-references.
	r.report.Phase = PhaseImportingProducts
	recs, res, err := r.read(EntityProducts)
	if err != nil {
		return nil, err
	}

	products := make([]database.Product, 0, len(recs))
	for _, rec := range recs {
		id, ok := parseInt(rec.Get("id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid product id: %q", rec.Get("id")))
			continue
		}
		products = append(products, database.Product{
			ID:    id,
			Name:  rec.Get("name"),
			Price: parseNumeric(rec.Get("price")),
		})
	}
	res.Accepted = len(products)
	if _, err := r.Store.InsertProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("insert products: %w", err)
	}
	slog.Info("products imported", "rows", len(products))

	// Users: no empty guard; their accepted ids gate every dependent
	// entity in this run.
	r.report.Phase = PhaseImportingUsers
	recs, res, err = r.read(EntityUsers)
	if err != nil {
		return nil, err
	}

	users := make([]database.User, 0, len(recs))
	userIDs := make(IDSet, len(recs))
	for _, rec := range recs {
		id, ok := parseInt(rec.Get("id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid user id: %q", rec.Get("id")))
			continue
		}
		users = append(users, database.User{
			ID:       id,
			Name:     rec.Get("name"),
			Email:    rec.Get("email"),
			Password: rec.Get("password"),
		})
		userIDs.Add(id)
	}
	res.Accepted = len(users)
	if _, err := r.Store.InsertUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("insert users: %w", err)
	}
	slog.Info("users imported", "rows", len(users))

	return userIDs, nil
}

func (r *Runner) importAddresses(ctx context.Context, userIDs IDSet) error {
	r.report.Phase = PhaseImportingAddresses
	recs, res, err := r.read(EntityAddresses)
	if err != nil {
		return err
	}

	addresses := make([]database.Address, 0, len(recs))
	for _, rec := range recs {
		userID, ok := parseInt(rec.Get("user_id"))
		if !ok || !userIDs.Has(userID) {
			r.warn(res, rec.Line, fmt.Sprintf("skipping address for non-existent user id: %q", rec.Get("user_id")))
			continue
		}

		id, ok := parseInt(rec.Get("id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid address id: %q", rec.Get("id")))
			continue
		}

		parsed, err := SegmentAddress(rec.Get("address"))
		if err != nil {
			r.warn(res, rec.Line, fmt.Sprintf("failed to parse address: %v", err))
			continue
		}

		addresses = append(addresses, database.Address{
			ID:      id,
			UserID:  userID,
			Street:  parsed.Street,
			City:    parsed.City,
			State:   parsed.State,
			ZipCode: parsed.ZipCode,
			Country: parsed.Country,
			// Source files carry no default-address flag.
			IsDefault: false,
		})
	}
	if len(addresses) == 0 {
		return &EmptyResultError{Entity: EntityAddresses}
	}
	res.Accepted = len(addresses)
	if _, err := r.Store.InsertAddresses(ctx, addresses); err != nil {
		return fmt.Errorf("insert addresses: %w", err)
	}
	slog.Info("addresses imported", "rows", len(addresses))
	return nil
}

func (r *Runner) importCarts(ctx context.Context, userIDs IDSet) error {
	r.report.Phase = PhaseImportingCarts
	recs, res, err := r.read(EntityCarts)
	if err != nil {
		return err
	}

	carts := make([]database.Cart, 0, len(recs))
	for _, rec := range recs {
		userID, ok := parseInt(rec.Get("user_id"))
		if !ok || !userIDs.Has(userID) {
			r.warn(res, rec.Line, fmt.Sprintf("skipping cart for non-existent user id: %q", rec.Get("user_id")))
			continue
		}

		id, ok := parseInt(rec.Get("id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid cart id: %q", rec.Get("id")))
			continue
		}

		// product_id is stored as given, not validated against the
		// products table.
		productID, ok := parseInt(rec.Get("product_id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid product_id in cart: %q", rec.Get("product_id")))
			continue
		}

		quantity, ok := parseInt(rec.Get("quantity"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid quantity in cart: %q", rec.Get("quantity")))
			continue
		}

		createdAt, defaulted := parseTimeOrDefault(rec.Get("created_at"), r.Now())
		if defaulted {
			res.DefaultedTimestamps++
		}

		carts = append(carts, database.Cart{
			ID:        id,
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: createdAt,
		})
	}
	if len(carts) == 0 {
		return &EmptyResultError{Entity: EntityCarts}
	}
	res.Accepted = len(carts)
	if _, err := r.Store.InsertCarts(ctx, carts); err != nil {
		return fmt.Errorf("insert carts: %w", err)
	}
	slog.Info("carts imported", "rows", len(carts))
	return nil
}

func (r *Runner) importOrders(ctx context.Context, userIDs IDSet) (IDSet, error) {
	r.report.Phase = PhaseImportingOrders
	recs, res, err := r.read(EntityOrders)
	if err != nil {
		return nil, err
	}

	orders := make([]database.Order, 0, len(recs))
	orderIDs := make(IDSet, len(recs))
	for _, rec := range recs {
		userID, ok := parseInt(rec.Get("user_id"))
		if !ok || !userIDs.Has(userID) {
			r.warn(res, rec.Line, fmt.Sprintf("skipping order for non-existent user id: %q", rec.Get("user_id")))
			continue
		}

		id, ok := parseInt(rec.Get("id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid order id: %q", rec.Get("id")))
			continue
		}

		createdAt, defaulted := parseTimeOrDefault(rec.Get("created"), r.Now())
		if defaulted {
			res.DefaultedTimestamps++
		}

		orders = append(orders, database.Order{
			ID:        id,
			UserID:    userID,
			CreatedAt: createdAt,
		})
		orderIDs.Add(id)
	}
	if len(orders) == 0 {
		return nil, &EmptyResultError{Entity: EntityOrders}
	}
	res.Accepted = len(orders)
	if _, err := r.Store.InsertOrders(ctx, orders); err != nil {
		return nil, fmt.Errorf("insert orders: %w", err)
	}
	slog.Info("orders imported", "rows", len(orders))
	return orderIDs, nil
}

func (r *Runner) importOrderProducts(ctx context.Context, orderIDs IDSet) error {
	r.report.Phase = PhaseImportingOrderProducts
	recs, res, err := r.read(EntityOrderProducts)
	if err != nil {
		return err
	}

	lineItems := make([]database.OrderProduct, 0, len(recs))
	for _, rec := range recs {
		orderID, ok := parseInt(rec.Get("order_id"))
		if !ok || !orderIDs.Has(orderID) {
			r.warn(res, rec.Line, fmt.Sprintf("skipping order product for non-existent order id: %q", rec.Get("order_id")))
			continue
		}

		quantity, ok := parseInt(rec.Get("amount"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid amount in order product: %q", rec.Get("amount")))
			continue
		}

		id, ok := parseInt(rec.Get("id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid order product id: %q", rec.Get("id")))
			continue
		}

		productID, ok := parseInt(rec.Get("product_id"))
		if !ok {
			r.warn(res, rec.Line, fmt.Sprintf("invalid product_id in order product: %q", rec.Get("product_id")))
			continue
		}

		lineItems = append(lineItems, database.OrderProduct{
			ID:        id,
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	if len(lineItems) == 0 {
		return &EmptyResultError{Entity: EntityOrderProducts}
	}
	res.Accepted = len(lineItems)
	if _, err := r.Store.InsertOrderProducts(ctx, lineItems); err != nil {
		return fmt.Errorf("insert order products: %w", err)
	}
	slog.Info("order products imported", "rows", len(lineItems))
	return nil
}

// read loads and parses one entity's source file and opens its result
// entry in the report.
func (r *Runner) read(entity Entity) ([]Record, *EntityResult, error) {
	data, err := fs.ReadFile(r.Sources, entity.SourceFile())
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", entity.SourceFile(), err)
	}

	recs, err := ParseRecords(data)
	if err != nil {
		return nil, nil, &FormatError{Entity: entity, Err: err}
	}

	r.report.Entities = append(r.report.Entities, EntityResult{
		Entity: entity,
		Read:   len(recs),
	})
	return recs, &r.report.Entities[len(r.report.Entities)-1], nil
}

// warn records a dropped row in the report and emits it to the log.
func (r *Runner) warn(res *EntityResult, line int, reason string) {
	res.Skipped++
	res.Warnings = append(res.Warnings, RowWarning{Line: line, Reason: reason})
	slog.Warn("row skipped", "entity", res.Entity, "line", line, "reason", reason)
}
