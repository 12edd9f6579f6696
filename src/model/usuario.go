// backend/src/model/usuario.go
package model

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrUsuarioNoEncontrado = errors.New("usuario no encontrado")

// Usuario is a back-office account allowed to upload sales reports and
// manage the dictionaries.
type Usuario struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Nombre    string    `json:"nombre"`
	Password  string    `json:"-"`
	Activo    bool      `json:"activo"`
	EsAdmin   bool      `json:"es_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *Usuario) HashPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *Usuario) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *Usuario) Crear(db *sql.DB) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Activo = true

	stmt, err := db.Prepare(`
	INSERT INTO usuarios (email, nombre, password, activo, es_admin, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(u.Email, u.Nombre, u.Password, u.Activo, u.EsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func scanUsuario(row *sql.Row) (*Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Email, &u.Nombre, &u.Password, &u.Activo, &u.EsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUsuarioNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUsuarioByEmail(db *sql.DB, email string) (*Usuario, error) {
	row := db.QueryRow(`
	SELECT id, email, nombre, password, activo, es_admin, created_at, updated_at
	FROM usuarios WHERE email = ?`, email)
	return scanUsuario(row)
}

func GetUsuarioByID(db *sql.DB, id int64) (*Usuario, error) {
	row := db.QueryRow(`
	SELECT id, email, nombre, password, activo, es_admin, created_at, updated_at
	FROM usuarios WHERE id = ?`, id)
	return scanUsuario(row)
}

// CountUsuarios supports the first-run admin bootstrap.
func CountUsuarios(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM usuarios`).Scan(&n)
	return n, err
}
