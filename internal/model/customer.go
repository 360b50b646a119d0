package model

type Customer struct {
	BaseModel `yaml:",inline"`
	CustomerName     string `db:"customer_name" json:"customer_name" yaml:"customer_name"`
	CustomerGroup    string `db:"customer_group" json:"customer_group" yaml:"customer_group"`
	Territory        string `db:"territory" json:"territory" yaml:"territory"`
	DefaultPriceList string `db:"default_price_list" json:"default_price_list" yaml:"default_price_list"`
	MobileNo         string `db:"mobile_no" json:"mobile_no" yaml:"mobile_no"`
	EmailID          string `db:"email_id" json:"email_id" yaml:"email_id"`
	Disabled         bool   `db:"disabled" json:"disabled" yaml:"disabled"`
}
