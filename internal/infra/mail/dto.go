package mail

type NewLeadEmailData struct {
	FullName    string
	Email       string
	Country     string
	Visas       []string
	ResumeURL   string
	SubmittedAt string
}

type ConfirmationEmailData struct {
	FirstName string
	Visas     []string
	ReplyTo   string
}

type DigestRow struct {
	Name        string
	Email       string
	Country     string
	SubmittedAt string
}

type DigestEmailData struct {
	Count  int
	MinAge string
	Leads  []DigestRow
}

type Config struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	AdminEmail string
}
