package controller

import (
	"strings"
	"time"

	"github.com/pourmind/pym/model"

	"github.com/labstack/echo/v4"
	"github.com/xeonx/timeago"
)

func wantsXML(c echo.Context) bool {
	if c.QueryParam("format") == "xml" {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, "application/xml") || strings.Contains(accept, "text/xml")
}
func respond(c echo.Context, status int, v any) error {
	if wantsXML(c) {
		return c.XML(status, v)
	}
	return c.JSON(status, v)
}

// Display date formats shown alongside the machine-readable timestamp.
const (
	noteDateFormat  = "January 2, 2006"
	replyDateFormat = "January 2, 2006 at 3:04 PM"
)

var timeagoEnglish = timeago.NoMax(timeago.English)

// ---- DTOs for notes ----

type APINote struct {
	ID             uint      `json:"id" xml:"id,attr"`
	Content        string    `json:"content" xml:"content"`
	Author         string    `json:"author" xml:"author"`
	IsAnonymous    bool      `json:"is_anonymous" xml:"is_anonymous"`
	CreatedAt      time.Time `json:"created_at" xml:"created_at"`
	CreatedDisplay string    `json:"created_display" xml:"created_display"`
	CreatedAgo     string    `json:"created_ago" xml:"created_ago"`
	ReplyCount     int64     `json:"reply_count" xml:"reply_count"`
}

type APIReply struct {
	ID             uint      `json:"id" xml:"id,attr"`
	ParentID       uint      `json:"parent_id" xml:"parent_id"`
	Content        string    `json:"content" xml:"content"`
	Author         string    `json:"author" xml:"author"`
	IsAnonymous    bool      `json:"is_anonymous" xml:"is_anonymous"`
	CreatedAt      time.Time `json:"created_at" xml:"created_at"`
	CreatedDisplay string    `json:"created_display" xml:"created_display"`
	CreatedAgo     string    `json:"created_ago" xml:"created_ago"`
}

type APINoteList struct {
	XMLName     struct{}  `json:"-" xml:"notes"`
	Notes       []APINote `json:"notes" xml:"note"`
	HasNext     bool      `json:"has_next" xml:"has_next"`
	HasPrevious bool      `json:"has_previous" xml:"has_previous"`
	CurrentPage int       `json:"current_page" xml:"current_page"`
	TotalPages  int       `json:"total_pages" xml:"total_pages"`
	TotalCount  int64     `json:"total_count" xml:"total_count"`
}

type APINoteDetail struct {
	APINote
	Replies []APIReply `json:"replies" xml:"replies>reply"`
}

type APINoteDetailResponse struct {
	XMLName struct{}      `json:"-" xml:"result"`
	Note    APINoteDetail `json:"note" xml:"note"`
}

type APISubmitResponse struct {
	XMLName struct{} `json:"-" xml:"result"`
	Success bool     `json:"success" xml:"success"`
	Note    APINote  `json:"note" xml:"note"`
}

type APIReplyResponse struct {
	XMLName struct{} `json:"-" xml:"result"`
	Success bool     `json:"success" xml:"success"`
	Reply   APIReply `json:"reply" xml:"reply"`
}

type APIAbout struct {
	Name        string   `json:"name" xml:"name"`
	Description string   `json:"description" xml:"description"`
	Features    []string `json:"features" xml:"features>feature"`
	Version     string   `json:"version" xml:"version"`
}

type APIAboutResponse struct {
	XMLName struct{} `json:"-" xml:"result"`
	About   APIAbout `json:"about" xml:"about"`
}

func apiNoteFromModel(n *model.Note, replyCount int64) APINote {
	return APINote{
		ID:             n.ID,
		Content:        n.Content,
		Author:         n.DisplayAuthor(),
		IsAnonymous:    n.IsAnonymous,
		CreatedAt:      n.CreatedAt,
		CreatedDisplay: n.CreatedAt.Format(noteDateFormat),
		CreatedAgo:     timeagoEnglish.Format(n.CreatedAt),
		ReplyCount:     replyCount,
	}
}

func apiReplyFromModel(n *model.Note) APIReply {
	var parentID uint
	if n.ParentID != nil {
		parentID = *n.ParentID
	}
	return APIReply{
		ID:             n.ID,
		ParentID:       parentID,
		Content:        n.Content,
		Author:         n.DisplayAuthor(),
		IsAnonymous:    n.IsAnonymous,
		CreatedAt:      n.CreatedAt,
		CreatedDisplay: n.CreatedAt.Format(replyDateFormat),
		CreatedAgo:     timeagoEnglish.Format(n.CreatedAt),
	}
}
