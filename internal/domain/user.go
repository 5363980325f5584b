package domain

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Subject 是可以被排班的人员，成员目录由服务器维护
type Subject struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName,omitempty"`
	Score       float64 `json:"score"`
}

// Identity 优先使用 ID，旧数据只有 name
func (s Subject) Identity() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}
