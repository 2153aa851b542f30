package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DocumentKind identifica una serie de numeración.
type DocumentKind string

const (
	DocMovementEntry      DocumentKind = "ENT"
	DocMovementExit       DocumentKind = "SAL"
	DocMovementTransfer   DocumentKind = "TRF"
	DocMovementAdjustment DocumentKind = "AJU"
	DocPurchaseOrder      DocumentKind = "OC"
	DocQuotation          DocumentKind = "COT"
	DocRequisition        DocumentKind = "REQ"
	DocExitVoucher        DocumentKind = "VS"
	DocEppIssuance        DocumentKind = "EPP"
	DocEquipmentLoan      DocumentKind = "PRE"
)

// SequenceDigits es el ancho del consecutivo en todos los formatos vigentes.
const SequenceDigits = 6

// yearly indica las series que reinician por año (el resto reinicia por mes).
func (k DocumentKind) yearly() bool {
	return k == DocPurchaseOrder || k == DocQuotation
}

// Period devuelve el periodo de la serie: "2026" o "202601".
func (k DocumentKind) Period(at time.Time) string {
	if k.yearly() {
		return at.Format("2006")
	}
	return at.Format("200601")
}

// Prefix devuelve el prefijo completo con periodo, ej. "ENT-202601-".
func (k DocumentKind) Prefix(at time.Time) string {
	return fmt.Sprintf("%s-%s-", k, k.Period(at))
}

// Format construye el número de documento, ej. "ENT-202601-000042".
func (k DocumentKind) Format(at time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", k.Prefix(at), SequenceDigits, seq)
}

// MovementDocumentKind devuelve la serie para un tipo de movimiento.
func MovementDocumentKind(movementType string) (DocumentKind, bool) {
	switch movementType {
	case entity.MovementTypeENTRY:
		return DocMovementEntry, true
	case entity.MovementTypeEXIT:
		return DocMovementExit, true
	case entity.MovementTypeTRANSFER:
		return DocMovementTransfer, true
	case entity.MovementTypeADJUSTMENT:
		return DocMovementAdjustment, true
	}
	return "", false
}
