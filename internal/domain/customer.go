package domain

type Customer struct {
	ID       int64
	Name     string
	Phone    string
	Address  string
	Location *Coordinates
}
