package user

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	// Currency is the display currency for all amounts of this user. Amounts are
	// never converted; this is a label only.
	Currency string
}
