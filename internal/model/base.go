package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// asignarID sets a fresh UUID before insert. IDs are generated in Go rather
// than with a database default so the same models work on Postgres and on
// the SQLite databases used in tests.
func asignarID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Proveedor) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

func (c *ContactoProveedor) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

func (i *Ingrediente) BeforeCreate(*gorm.DB) error {
	asignarID(&i.ID)
	return nil
}

func (p *PrecioProveedor) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

func (h *HistorialPrecio) BeforeCreate(*gorm.DB) error {
	asignarID(&h.ID)
	return nil
}

func (p *Producto) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

func (f *Fabricacion) BeforeCreate(*gorm.DB) error {
	asignarID(&f.ID)
	return nil
}

func (l *FabricacionLinea) BeforeCreate(*gorm.DB) error {
	asignarID(&l.ID)
	return nil
}
