package domain

// Setting is one pharmacy configuration entry, stored as an individual
// key/value pair. Known keys: pharmacyName, address, phone, pan, dda,
// drugLicense, email.
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}
