package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/seedtools/shopseed/internal/database"
)

var importTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeStore records everything the pipeline writes.
type fakeStore struct {
	resets        []string
	products      []database.Product
	users         []database.User
	addresses     []database.Address
	carts         []database.Cart
	orders        []database.Order
	orderProducts []database.OrderProduct

	failInsert Entity // insert for this entity returns an error
}

func (f *fakeStore) reset(table string) error {
	f.resets = append(f.resets, table)
	return nil
}

func (f *fakeStore) ResetProducts(ctx context.Context) error      { return f.reset("products") }
func (f *fakeStore) ResetUsers(ctx context.Context) error         { return f.reset("users") }
func (f *fakeStore) ResetAddresses(ctx context.Context) error     { return f.reset("addresses") }
func (f *fakeStore) ResetCarts(ctx context.Context) error         { return f.reset("carts") }
func (f *fakeStore) ResetOrders(ctx context.Context) error        { return f.reset("orders") }
func (f *fakeStore) ResetOrderProducts(ctx context.Context) error { return f.reset("order_products") }

func (f *fakeStore) insertErr(e Entity) error {
	if f.failInsert == e {
		return fmt.Errorf("store unavailable")
	}
	return nil
}

func (f *fakeStore) InsertProducts(ctx context.Context, rows []database.Product) (int64, error) {
	if err := f.insertErr(EntityProducts); err != nil {
		return 0, err
	}
	f.products = rows
	return int64(len(rows)), nil
}

func (f *fakeStore) InsertUsers(ctx context.Context, rows []database.User) (int64, error) {
	if err := f.insertErr(EntityUsers); err != nil {
		return 0, err
	}
	f.users = rows
	return int64(len(rows)), nil
}

func (f *fakeStore) InsertAddresses(ctx context.Context, rows []database.Address) (int64, error) {
	if err := f.insertErr(EntityAddresses); err != nil {
		return 0, err
	}
	f.addresses = rows
	return int64(len(rows)), nil
}

func (f *fakeStore) InsertCarts(ctx context.Context, rows []database.Cart) (int64, error) {
	if err := f.insertErr(EntityCarts); err != nil {
		return 0, err
	}
	f.carts = rows
	return int64(len(rows)), nil
}

func (f *fakeStore) InsertOrders(ctx context.Context, rows []database.Order) (int64, error) {
	if err := f.insertErr(EntityOrders); err != nil {
		return 0, err
	}
	f.orders = rows
	return int64(len(rows)), nil
}

func (f *fakeStore) InsertOrderProducts(ctx context.Context, rows []database.OrderProduct) (int64, error) {
	if err := f.insertErr(EntityOrderProducts); err != nil {
		return 0, err
	}
	f.orderProducts = rows
	return int64(len(rows)), nil
}

// baseSources returns a consistent six-file fixture. Tests override single
// files to exercise failure paths.
func baseSources() map[string]string {
	return map[string]string{
		"products.csv": "id,name,price\n" +
			"1,Widget,9.99\n" +
			"2,Gadget,19.99\n",
		"users.csv": "id,name,email,password\n" +
			"10,Ada,ada@example.com,pw1\n" +
			"11,Bob,bob@example.com,pw2\n",
		"addresses.csv": "id,user_id,address\n" +
			"100,10,\"456 Oak Ave, Portland, OR 97201\"\n" +
			"101,11,\"123 Main St, Apt 4, Springfield, IL 62704\"\n",
		"carts.csv": "id,user_id,product_id,quantity,created_at\n" +
			"200,10,1,2,2023-11-05T08:30:00Z\n" +
			"201,11,2,1,\n",
		"orders.csv": "id,user_id,created\n" +
			"300,10,2023-01-15\n" +
			"301,11,\n",
		"order_products.csv": "id,order_id,product_id,amount\n" +
			"400,300,1,3\n" +
			"401,301,2,1\n",
	}
}

func toFS(files map[string]string) fstest.MapFS {
	m := make(fstest.MapFS, len(files))
	for name, data := range files {
		m[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return m
}

func runWith(t *testing.T, files map[string]string, store *fakeStore) (*RunReport, error) {
	t.Helper()
	runner := &Runner{
		Store:   store,
		Sources: toFS(files),
		Now:     func() time.Time { return importTime },
	}
	return runner.Run(context.Background(), "test-run")
}

func TestRun_FullImport(t *testing.T) {
	store := &fakeStore{}
	report, err := runWith(t, baseSources(), store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Phase != PhaseDone {
		t.Errorf("Phase = %q, want %q", report.Phase, PhaseDone)
	}

	wantResets := []string{"carts", "addresses", "order_products", "orders", "products", "users"}
	if len(store.resets) != len(wantResets) {
		t.Fatalf("resets = %v, want %v", store.resets, wantResets)
	}
	for i, table := range wantResets {
		if store.resets[i] != table {
			t.Errorf("reset[%d] = %q, want %q", i, store.resets[i], table)
		}
	}

	if len(store.products) != 2 || len(store.users) != 2 || len(store.addresses) != 2 ||
		len(store.carts) != 2 || len(store.orders) != 2 || len(store.orderProducts) != 2 {
		t.Errorf("persisted row counts = %d/%d/%d/%d/%d/%d, want 2 each",
			len(store.products), len(store.users), len(store.addresses),
			len(store.carts), len(store.orders), len(store.orderProducts))
	}

	// Identifiers are taken verbatim from the source
	if store.users[0].ID != 10 || store.users[1].ID != 11 {
		t.Errorf("user ids = %d, %d, want 10, 11", store.users[0].ID, store.users[1].ID)
	}

	// Addresses are segmented and fixed-policy fields applied
	addr := store.addresses[1]
	if addr.Street != "123 Main St, Apt 4" || addr.City != "Springfield" ||
		addr.State != "IL" || addr.ZipCode != "62704" || addr.Country != "USA" {
		t.Errorf("segmented address = %+v", addr)
	}
	if addr.IsDefault {
		t.Error("IsDefault = true, want false at import time")
	}

	for _, res := range report.Entities {
		if res.Skipped != 0 {
			t.Errorf("%s: Skipped = %d, want 0", res.Entity, res.Skipped)
		}
	}
}

func TestRun_UserAcceptedSetMatchesSource(t *testing.T) {
	store := &fakeStore{}
	if _, err := runWith(t, baseSources(), store); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := make(map[int32]int)
	for _, u := range store.users {
		got[u.ID]++
	}
	for _, id := range []int32{10, 11} {
		if got[id] != 1 {
			t.Errorf("user %d persisted %d times, want exactly once", id, got[id])
		}
	}
	if len(got) != 2 {
		t.Errorf("persisted %d distinct users, want 2", len(got))
	}
}

func TestRun_DropsChildrenOfUnknownUsers(t *testing.T) {
	files := baseSources()
	files["carts.csv"] = "id,user_id,product_id,quantity,created_at\n" +
		"200,10,1,2,2023-11-05T08:30:00Z\n" +
		"201,99,2,1,2023-11-05T08:30:00Z\n" // user 99 was never imported

	store := &fakeStore{}
	report, err := runWith(t, files, store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(store.carts) != 1 {
		t.Fatalf("persisted %d carts, want 1", len(store.carts))
	}
	if store.carts[0].ID != 200 {
		t.Errorf("kept cart %d, want 200", store.carts[0].ID)
	}

	res := report.Result(EntityCarts)
	if res == nil || res.Skipped != 1 || len(res.Warnings) != 1 {
		t.Fatalf("cart result = %+v, want 1 skip with warning", res)
	}
	if !strings.Contains(res.Warnings[0].Reason, "99") {
		t.Errorf("warning %q does not name the offending id", res.Warnings[0].Reason)
	}
}

func TestRun_AllCartsInvalidFailsRun(t *testing.T) {
	files := baseSources()
	files["carts.csv"] = "id,user_id,product_id,quantity,created_at\n" +
		"200,98,1,2,2023-11-05T08:30:00Z\n" +
		"201,99,2,1,2023-11-05T08:30:00Z\n"

	store := &fakeStore{}
	report, err := runWith(t, files, store)

	var emptyErr *EmptyResultError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Run() error = %v, want EmptyResultError", err)
	}
	if emptyErr.Entity != EntityCarts {
		t.Errorf("EmptyResultError.Entity = %q, want %q", emptyErr.Entity, EntityCarts)
	}
	if report.Phase != PhaseFailed {
		t.Errorf("Phase = %q, want %q", report.Phase, PhaseFailed)
	}
	if store.carts != nil {
		t.Errorf("persisted %d carts, want none", len(store.carts))
	}
	// Entities after the failed step never run
	if store.orders != nil || store.orderProducts != nil {
		t.Error("orders/order products imported after failed cart step")
	}
}

func TestRun_OrderProductBadAmount(t *testing.T) {
	files := baseSources()
	files["order_products.csv"] = "id,order_id,product_id,amount\n" +
		"400,300,1,3\n" +
		"401,301,2,many\n"

	store := &fakeStore{}
	report, err := runWith(t, files, store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(store.orderProducts) != 1 {
		t.Fatalf("persisted %d order products, want 1", len(store.orderProducts))
	}
	res := report.Result(EntityOrderProducts)
	if res.Skipped != 1 || len(res.Warnings) != 1 {
		t.Errorf("order product result = %+v, want 1 skip with warning", res)
	}
}

func TestRun_AllOrderProductsInvalidFailsRun(t *testing.T) {
	files := baseSources()
	files["order_products.csv"] = "id,order_id,product_id,amount\n" +
		"400,300,1,lots\n" +
		"401,301,2,many\n"

	store := &fakeStore{}
	_, err := runWith(t, files, store)

	var emptyErr *EmptyResultError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Run() error = %v, want EmptyResultError", err)
	}
	if emptyErr.Entity != EntityOrderProducts {
		t.Errorf("EmptyResultError.Entity = %q, want %q", emptyErr.Entity, EntityOrderProducts)
	}
}

func TestRun_TimestampFallback(t *testing.T) {
	store := &fakeStore{}
	report, err := runWith(t, baseSources(), store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Cart 201 has an empty created_at, order 301 an empty created
	if !store.carts[1].CreatedAt.Equal(importTime) {
		t.Errorf("cart CreatedAt = %v, want fallback %v", store.carts[1].CreatedAt, importTime)
	}
	if !store.orders[1].CreatedAt.Equal(importTime) {
		t.Errorf("order CreatedAt = %v, want fallback %v", store.orders[1].CreatedAt, importTime)
	}

	if got := report.Result(EntityCarts).DefaultedTimestamps; got != 1 {
		t.Errorf("cart DefaultedTimestamps = %d, want 1", got)
	}
	if got := report.Result(EntityOrders).DefaultedTimestamps; got != 1 {
		t.Errorf("order DefaultedTimestamps = %d, want 1", got)
	}

	// A parseable value is kept as-is
	want := time.Date(2023, 11, 5, 8, 30, 0, 0, time.UTC)
	if !store.carts[0].CreatedAt.Equal(want) {
		t.Errorf("cart CreatedAt = %v, want %v", store.carts[0].CreatedAt, want)
	}
}

// product_id on carts and order line items is stored as given, without
// cross-validation against the products table.
func TestRun_DanglingProductIDAllowed(t *testing.T) {
	files := baseSources()
	files["carts.csv"] = "id,user_id,product_id,quantity,created_at\n" +
		"200,10,999,2,2023-11-05T08:30:00Z\n"
	files["order_products.csv"] = "id,order_id,product_id,amount\n" +
		"400,300,888,3\n"

	store := &fakeStore{}
	if _, err := runWith(t, files, store); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.carts[0].ProductID != 999 {
		t.Errorf("cart ProductID = %d, want dangling 999 kept", store.carts[0].ProductID)
	}
	if store.orderProducts[0].ProductID != 888 {
		t.Errorf("order product ProductID = %d, want dangling 888 kept", store.orderProducts[0].ProductID)
	}
}

func TestRun_MalformedProductPriceStoredAsNaN(t *testing.T) {
	files := baseSources()
	files["products.csv"] = "id,name,price\n1,Widget,free\n"

	store := &fakeStore{}
	if _, err := runWith(t, files, store); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(store.products) != 1 {
		t.Fatalf("persisted %d products, want 1", len(store.products))
	}
	if !store.products[0].Price.NaN {
		t.Error("Price.NaN = false, want malformed price stored as NaN")
	}
}

func TestRun_EmptyProductsAllowed(t *testing.T) {
	files := baseSources()
	files["products.csv"] = "id,name,price\n"

	store := &fakeStore{}
	report, err := runWith(t, files, store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Phase != PhaseDone {
		t.Errorf("Phase = %q, want %q", report.Phase, PhaseDone)
	}
	if len(store.products) != 0 {
		t.Errorf("persisted %d products, want 0", len(store.products))
	}
}

func TestRun_MalformedSourceFailsRun(t *testing.T) {
	files := baseSources()
	files["users.csv"] = "id,name,email,password\n10,Ada,ada@example.com\n"

	store := &fakeStore{}
	report, err := runWith(t, files, store)

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("Run() error = %v, want FormatError", err)
	}
	if formatErr.Entity != EntityUsers {
		t.Errorf("FormatError.Entity = %q, want %q", formatErr.Entity, EntityUsers)
	}
	if report.Phase != PhaseFailed {
		t.Errorf("Phase = %q, want %q", report.Phase, PhaseFailed)
	}
}

func TestRun_MissingSourceFailsRun(t *testing.T) {
	files := baseSources()
	delete(files, "orders.csv")

	store := &fakeStore{}
	report, err := runWith(t, files, store)
	if err == nil {
		t.Fatal("Run() expected error for missing source file")
	}
	if report.Phase != PhaseFailed {
		t.Errorf("Phase = %q, want %q", report.Phase, PhaseFailed)
	}
}

func TestRun_InsertFailureFailsRun(t *testing.T) {
	store := &fakeStore{failInsert: EntityOrders}
	report, err := runWith(t, baseSources(), store)
	if err == nil {
		t.Fatal("Run() expected error when insert fails")
	}
	if report.Phase != PhaseFailed {
		t.Errorf("Phase = %q, want %q", report.Phase, PhaseFailed)
	}
	if store.orderProducts != nil {
		t.Error("order products imported after failed order insert")
	}
}

func TestRun_RowWarningsInvalidIDs(t *testing.T) {
	files := baseSources()
	files["users.csv"] = "id,name,email,password\n" +
		"ten,Ada,ada@example.com,pw1\n" +
		"11,Bob,bob@example.com,pw2\n"

	store := &fakeStore{}
	report, err := runWith(t, files, store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(store.users) != 1 || store.users[0].ID != 11 {
		t.Fatalf("persisted users = %+v, want only id 11", store.users)
	}
	res := report.Result(EntityUsers)
	if res.Read != 2 || res.Accepted != 1 || res.Skipped != 1 {
		t.Errorf("user result = %+v, want read 2, accepted 1, skipped 1", res)
	}
}
