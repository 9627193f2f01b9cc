// Package domain defines the contact record model shared by the session
// lifecycle, the CSV-backed record store, and the HTTP layer. A ContactRecord
// is one row of the persisted table and, while an onboarding session is in
// progress, one entry of the session store.
package domain

// Columns is the fixed column set of the record store, in persisted order.
// The on-disk header must match this list exactly; it is part of the external
// contract and must never be reordered.
var Columns = []string{
	"id", "name", "email", "mae", "telefone", "endereco", "geo", "cep",
	"cpf", "nascimento", "data", "ip", "senha", "codigo_telefone", "codigo_email",
}

// ContactRecord is a single contact row. All fields are textual; the empty
// string means "not yet collected". ID, CPF, Data, and IP are set once at
// session start and never reassigned.
//
// Fields:
//   - ID: generated UUID, primary key of the record store and session token.
//   - Name: full name returned by the identity lookup.
//   - Mae: name of the first related person tagged as daughter/son, or "N/A".
//   - CPF: national ID grouped as XXX.XXX.XXX-XX.
//   - Nascimento: birth date as DD/MM/YYYY, or "N/A" when unavailable.
//   - Data: creation timestamp "HH:MM - DD/MM" in the configured zone.
//   - IP: client address at session start.
//
// The remaining fields are filled in progressively by the complete step.
type ContactRecord struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Mae            string `json:"mae"`
	Telefone       string `json:"telefone"`
	Endereco       string `json:"endereco"`
	Geo            string `json:"geo"`
	CEP            string `json:"cep"`
	CPF            string `json:"cpf"`
	Nascimento     string `json:"nascimento"`
	Data           string `json:"data"`
	IP             string `json:"ip"`
	Senha          string `json:"senha"`
	CodigoTelefone string `json:"codigo_telefone"`
	CodigoEmail    string `json:"codigo_email"`
}

// Row returns the record's values in Columns order, ready for the CSV writer.
func (r ContactRecord) Row() []string {
	return []string{
		r.ID, r.Name, r.Email, r.Mae, r.Telefone, r.Endereco, r.Geo, r.CEP,
		r.CPF, r.Nascimento, r.Data, r.IP, r.Senha, r.CodigoTelefone, r.CodigoEmail,
	}
}

// Map returns the record as a column→value mapping, one key per column.
// Unset fields are present with an empty string, never omitted.
func (r ContactRecord) Map() map[string]string {
	row := r.Row()
	m := make(map[string]string, len(Columns))
	for i, col := range Columns {
		m[col] = row[i]
	}
	return m
}

// FromRow rebuilds a ContactRecord from a CSV row in Columns order.
// Short rows are tolerated (missing trailing cells read as empty).
func FromRow(row []string) ContactRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return ContactRecord{
		ID:             cell(0),
		Name:           cell(1),
		Email:          cell(2),
		Mae:            cell(3),
		Telefone:       cell(4),
		Endereco:       cell(5),
		Geo:            cell(6),
		CEP:            cell(7),
		CPF:            cell(8),
		Nascimento:     cell(9),
		Data:           cell(10),
		IP:             cell(11),
		Senha:          cell(12),
		CodigoTelefone: cell(13),
		CodigoEmail:    cell(14),
	}
}

// ContactUpdate carries the fields a client may fill in after session start.
// Pointers distinguish "absent" from "present but empty"; both are ignored by
// Apply, so an update can never erase data already collected.
type ContactUpdate struct {
	Senha          *string `json:"senha"`
	CEP            *string `json:"cep"`
	Telefone       *string `json:"telefone"`
	CodigoTelefone *string `json:"codigo_telefone"`
	Email          *string `json:"email"`
	CodigoEmail    *string `json:"codigo_email"`
}

// Apply merges the update into r following the merge-by-non-empty rule:
// only supplied, non-empty values overwrite the corresponding field.
func (u ContactUpdate) Apply(r *ContactRecord) {
	set := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	set(&r.Senha, u.Senha)
	set(&r.CEP, u.CEP)
	set(&r.Telefone, u.Telefone)
	set(&r.CodigoTelefone, u.CodigoTelefone)
	set(&r.Email, u.Email)
	set(&r.CodigoEmail, u.CodigoEmail)
}
