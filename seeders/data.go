package seeders

type seedUser struct {
	Name     string
	Email    string
	Password string
}

type seedCustomer struct {
	Name  string
	Email string
}

type seedInvoice struct {
	CustomerEmail string
	Amount        int64
	Paid          bool
	DueInDays     int
}

var users = []seedUser{
	{Name: "Ada Lovelace", Email: "ada@example.com", Password: "password123"},
	{Name: "Grace Hopper", Email: "grace@example.com", Password: "password123"},
}

var customers = []seedCustomer{
	{Name: "Evil Rabbit", Email: "evil@rabbit.com"},
	{Name: "Delba de Oliveira", Email: "delba@oliveira.com"},
	{Name: "Lee Robinson", Email: "lee@robinson.com"},
	{Name: "Michael Novotny", Email: "michael@novotny.com"},
}

// Amounts are in cents.
var invoices = []seedInvoice{
	{CustomerEmail: "evil@rabbit.com", Amount: 15795, DueInDays: 14},
	{CustomerEmail: "delba@oliveira.com", Amount: 20348, DueInDays: -7},
	{CustomerEmail: "lee@robinson.com", Amount: 3040, Paid: true},
	{CustomerEmail: "michael@novotny.com", Amount: 44800, Paid: true},
	{CustomerEmail: "evil@rabbit.com", Amount: 34577, DueInDays: 30},
}
