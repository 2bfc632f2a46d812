package dto

type NotificationListRequest struct {
	Unread   bool `query:"unread"`
	Archived bool `query:"archived"`
	Limit    int  `query:"limit"`
	Offset   int  `query:"offset"`
}

type GenerateNotificationsResponse struct {
	Created int `json:"created"`
	Scanned int `json:"scanned"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
