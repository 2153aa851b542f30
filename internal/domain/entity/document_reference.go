package entity

// Tipos de documento que pueden originar un movimiento.
type ReferenceKind string

const (
	RefPurchaseOrder ReferenceKind = "PURCHASE_ORDER"
	RefRequisition   ReferenceKind = "REQUISITION"
	RefExitVoucher   ReferenceKind = "EXIT_VOUCHER"
	RefLoan          ReferenceKind = "LOAN"
	RefEppIssuance   ReferenceKind = "EPP_ISSUANCE"
)

// DocumentReference apunta al documento externo que originó el movimiento.
type DocumentReference struct {
	Kind ReferenceKind
	ID   string
}

// Valid indica si el tipo de referencia es conocido y tiene ID.
func (r DocumentReference) Valid() bool {
	switch r.Kind {
	case RefPurchaseOrder, RefRequisition, RefExitVoucher, RefLoan, RefEppIssuance:
		return r.ID != ""
	}
	return false
}

// Tipos de receptor.
type ReceptorKind string

const (
	ReceptorWorker     ReceptorKind = "WORKER"
	ReceptorSystemUser ReceptorKind = "SYSTEM_USER"
)

// Receptor es la persona que recibe mercancía: un trabajador (sin cuenta en el sistema)
// o un usuario del sistema. Se resuelve una sola vez al construir el documento.
type Receptor struct {
	Kind ReceptorKind
	ID   string
}

// Worker construye un receptor trabajador.
func Worker(id string) Receptor { return Receptor{Kind: ReceptorWorker, ID: id} }

// SystemUser construye un receptor usuario del sistema.
func SystemUser(id string) Receptor { return Receptor{Kind: ReceptorSystemUser, ID: id} }

// Valid indica si el receptor está completo.
func (r Receptor) Valid() bool {
	return (r.Kind == ReceptorWorker || r.Kind == ReceptorSystemUser) && r.ID != ""
}
