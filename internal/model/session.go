package model

// Session is the caller identity forwarded to the analytics endpoint.
type Session struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
	DealerID   string `json:"dealerId"`
	RoleID     string `json:"roleId"`
}

func (s Session) IsZero() bool {
	return s == Session{}
}
