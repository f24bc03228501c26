package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/localbasket/storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, description, price, quantity, image
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, description, price, quantity, image
		FROM products WHERE id = ?`

	insertProductSQL = `INSERT INTO products (name, description, price, quantity, image)
		VALUES (?, ?, ?, ?, ?)`

	productExistsByNameSQL = `SELECT COUNT(1) FROM products WHERE name = ?`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by SQLite.
// Prices are stored as decimal strings to keep money exact.
type ProductRepository struct {
	conn *sql.DB
}

// NewProductRepository returns a ProductRepository over the given database.
func NewProductRepository(conn *sql.DB) *ProductRepository {
	return &ProductRepository{conn: conn}
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.conn.QueryContext(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("listing products: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.conn.QueryContext(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting product %d: %w", id, err)
		}
		return nil, product.ErrNotFound
	}
	p, err := scanProduct(rows)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Insert adds a product and returns its assigned ID. Used by the seeding
// command only; the serving path never writes.
func (r *ProductRepository) Insert(ctx context.Context, p product.Product) (int64, error) {
	res, err := r.conn.ExecContext(ctx, insertProductSQL,
		p.Name, p.Description, p.Price.String(), p.Quantity, p.Image,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting product %q: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inserting product %q: %w", p.Name, err)
	}
	return id, nil
}

// ExistsByName reports whether a product with the given name is already
// seeded.
func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.conn.QueryRowContext(ctx, productExistsByNameSQL, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking product %q: %w", name, err)
	}
	return count > 0, nil
}

func scanProduct(rows *sql.Rows) (product.Product, error) {
	var (
		p     product.Product
		price string
	)
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Quantity, &p.Image)
	if err != nil {
		return product.Product{}, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return product.Product{}, errors.Wrapf(err, "parse price %q", price)
	}
	return p, nil
}
