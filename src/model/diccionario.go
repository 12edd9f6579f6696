// backend/src/model/diccionario.go
package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrEntradaNoEncontrada = errors.New("entrada de diccionario no encontrada")

// ProductoCuenta maps one POS product code to its Concar ledger account.
type ProductoCuenta struct {
	ID             int64     `json:"id"`
	Producto       string    `json:"producto"`
	CuentaContable string    `json:"cuenta_contable"`
	Activo         bool      `json:"activo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ComboSalto maps a combo product code to the number of detail rows its
// bundled sub-items occupy in the export.
type ComboSalto struct {
	ID        int64     `json:"id"`
	Combo     string    `json:"combo"`
	Salto     int       `json:"salto"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *ProductoCuenta) Crear(db *sql.DB) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Activo = true

	res, err := db.Exec(`
	INSERT INTO productos_cuentas (producto, cuenta_contable, activo, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`,
		p.Producto, p.CuentaContable, p.Activo, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (p *ProductoCuenta) Actualizar(db *sql.DB) error {
	p.UpdatedAt = time.Now()
	res, err := db.Exec(`
	UPDATE productos_cuentas SET producto = ?, cuenta_contable = ?, activo = ?, updated_at = ?
	WHERE id = ?`,
		p.Producto, p.CuentaContable, p.Activo, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return errSiNoAfectado(res)
}

func EliminarProductoCuenta(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM productos_cuentas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return errSiNoAfectado(res)
}

func ListarProductosCuentas(db *sql.DB) ([]ProductoCuenta, error) {
	rows, err := db.Query(`
	SELECT id, producto, cuenta_contable, activo, created_at, updated_at
	FROM productos_cuentas ORDER BY producto`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductoCuenta
	for rows.Next() {
		var p ProductoCuenta
		if err := rows.Scan(&p.ID, &p.Producto, &p.CuentaContable, &p.Activo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertProductoCuenta supports the bulk import from an uploaded
// dictionary spreadsheet: existing products get the new account.
func UpsertProductoCuenta(db *sql.DB, producto, cuenta string) error {
	now := time.Now()
	_, err := db.Exec(`
	INSERT INTO productos_cuentas (producto, cuenta_contable, activo, created_at, updated_at)
	VALUES (?, ?, 1, ?, ?)
	ON CONFLICT(producto) DO UPDATE SET cuenta_contable = excluded.cuenta_contable, updated_at = excluded.updated_at`,
		producto, cuenta, now, now)
	return err
}

// UpsertComboSalto supports the bulk import from an uploaded combo
// spreadsheet: existing combos get the new skip count.
func UpsertComboSalto(db *sql.DB, combo string, salto int) error {
	now := time.Now()
	_, err := db.Exec(`
	INSERT INTO combos_salto (combo, salto, activo, created_at, updated_at)
	VALUES (?, ?, 1, ?, ?)
	ON CONFLICT(combo) DO UPDATE SET salto = excluded.salto, updated_at = excluded.updated_at`,
		combo, salto, now, now)
	return err
}

// CuentasSnapshot loads the active Product → Account mapping as a plain
// map for one processing run.
func CuentasSnapshot(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT producto, cuenta_contable FROM productos_cuentas WHERE activo = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cuentas := make(map[string]string)
	for rows.Next() {
		var producto, cuenta string
		if err := rows.Scan(&producto, &cuenta); err != nil {
			return nil, err
		}
		cuentas[producto] = cuenta
	}
	return cuentas, rows.Err()
}

func (c *ComboSalto) Crear(db *sql.DB) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Activo = true

	res, err := db.Exec(`
	INSERT INTO combos_salto (combo, salto, activo, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`,
		c.Combo, c.Salto, c.Activo, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (c *ComboSalto) Actualizar(db *sql.DB) error {
	c.UpdatedAt = time.Now()
	res, err := db.Exec(`
	UPDATE combos_salto SET combo = ?, salto = ?, activo = ?, updated_at = ?
	WHERE id = ?`,
		c.Combo, c.Salto, c.Activo, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return errSiNoAfectado(res)
}

func EliminarComboSalto(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM combos_salto WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return errSiNoAfectado(res)
}

func ListarCombosSalto(db *sql.DB) ([]ComboSalto, error) {
	rows, err := db.Query(`
	SELECT id, combo, salto, activo, created_at, updated_at
	FROM combos_salto ORDER BY combo`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComboSalto
	for rows.Next() {
		var c ComboSalto
		if err := rows.Scan(&c.ID, &c.Combo, &c.Salto, &c.Activo, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CombosSnapshot loads the active Combo → SkipCount mapping for one run.
func CombosSnapshot(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT combo, salto FROM combos_salto WHERE activo = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	combos := make(map[string]int)
	for rows.Next() {
		var combo string
		var salto int
		if err := rows.Scan(&combo, &salto); err != nil {
			return nil, err
		}
		combos[combo] = salto
	}
	return combos, rows.Err()
}

func errSiNoAfectado(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntradaNoEncontrada
	}
	return nil
}
