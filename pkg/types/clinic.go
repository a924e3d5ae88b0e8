package types

// Clinic pairs a veterinary clinic with its responsible veterinarian.
type Clinic struct {
	ID           string `db:"id" yaml:"id"`
	Name         string `db:"name" yaml:"name"`
	Veterinarian string `db:"veterinarian" yaml:"veterinarian"`
	Location     string `db:"location" yaml:"location"`
}
