package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
	UserName        string
	IsLeader        bool
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
	Notice string
	Error  string
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Message string
	Email   string
}

type RegisterPageData struct {
	BasePageData
	Name        string
	Email       string
	FieldErrors map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email   string
	Message string
}

type CatsPageData struct {
	BasePageData
	Cats     []*Cat
	Form     CatForm
	CanEdit  bool
	CanAdd   bool
	Statuses []string
}
