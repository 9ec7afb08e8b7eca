package crm

type customFieldValue struct {
	Value    string `json:"value"`
	EnumCode string `json:"enum_code,omitempty"`
}

type customField struct {
	FieldCode string             `json:"field_code"`
	Values    []customFieldValue `json:"values"`
}

type contactPayload struct {
	Name               string        `json:"name"`
	FirstName          string        `json:"first_name,omitempty"`
	LastName           string        `json:"last_name,omitempty"`
	CustomFieldsValues []customField `json:"custom_fields_values"`
}

type tag struct {
	Name string `json:"name"`
}

type entityRef struct {
	ID int `json:"id"`
}

type leadEmbedded struct {
	Tags     []tag       `json:"tags,omitempty"`
	Contacts []entityRef `json:"contacts,omitempty"`
}

type leadPayload struct {
	Name     string       `json:"name"`
	Embedded leadEmbedded `json:"_embedded"`
}

type embeddedIDs struct {
	Embedded struct {
		Leads    []entityRef `json:"leads"`
		Contacts []entityRef `json:"contacts"`
	} `json:"_embedded"`
}
