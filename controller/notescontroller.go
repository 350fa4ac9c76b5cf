package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pourmind/pym/model"

	"github.com/go-playground/form/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (ctrl *controller) noteInit(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/notes", ctrl.noteFeed)
	g.GET("/notes/:id", ctrl.noteDetail)
	g.POST("/notes/submit", ctrl.noteSubmit, ctrl.writes.middleware)
	g.POST("/notes/:id/reply", ctrl.noteReply, ctrl.writes.middleware)
	g.GET("/about", ctrl.about)
}

type feedQuery struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

func (ctrl *controller) noteFeed(c echo.Context) error {
	var q feedQuery
	if err := c.Bind(&q); err != nil {
		return ErrInvalid(err, "invalid query params")
	}

	page, err := ctrl.model.ListRootNotes(q.Page, q.PerPage)
	if err != nil {
		return ErrInternal(fmt.Errorf("cannot list notes: %w", err))
	}

	ids := make([]uint, len(page.Notes))
	for i := range page.Notes {
		ids[i] = page.Notes[i].ID
	}
	counts, err := ctrl.model.ReplyCounts(ids)
	if err != nil {
		return ErrInternal(fmt.Errorf("cannot count replies: %w", err))
	}

	items := make([]APINote, len(page.Notes))
	for i := range page.Notes {
		items[i] = apiNoteFromModel(&page.Notes[i], counts[page.Notes[i].ID])
	}
	return respond(c, http.StatusOK, APINoteList{
		Notes:       items,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalCount:  page.TotalCount,
	})
}

func (ctrl *controller) noteDetail(c echo.Context) error {
	id, err := noteIDParam(c)
	if err != nil {
		return ErrInvalid(err, "invalid note id")
	}

	note, err := ctrl.model.GetNoteByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound(fmt.Errorf("note %d: %w", id, err))
		}
		return ErrInternal(fmt.Errorf("cannot load note %d: %w", id, err))
	}

	replies, err := ctrl.model.ListReplies(note.ID)
	if err != nil {
		return ErrInternal(fmt.Errorf("cannot load replies for note %d: %w", id, err))
	}

	items := make([]APIReply, len(replies))
	for i := range replies {
		items[i] = apiReplyFromModel(&replies[i])
	}
	return respond(c, http.StatusOK, APINoteDetailResponse{
		Note: APINoteDetail{
			APINote: apiNoteFromModel(note, int64(len(replies))),
			Replies: items,
		},
	})
}

func (ctrl *controller) noteSubmit(c echo.Context) error {
	in, err := bindNoteInput(c)
	if err != nil {
		return ErrInvalid(err, "invalid request body")
	}

	note, verr := model.ValidateNoteInput(*in)
	if verr != nil {
		return ErrValidation(verr)
	}

	if err := ctrl.model.CreateNote(note); err != nil {
		return ErrInternal(fmt.Errorf("cannot save note: %w", err))
	}
	notesCreatedTotal.WithLabelValues("note").Inc()
	return respond(c, http.StatusCreated, APISubmitResponse{
		Success: true,
		Note:    apiNoteFromModel(note, 0),
	})
}

func (ctrl *controller) noteReply(c echo.Context) error {
	id, err := noteIDParam(c)
	if err != nil {
		return ErrInvalid(err, "invalid note id")
	}

	// Parent lookup comes first: replying to a missing note is a 404 even
	// when the body is also invalid.
	parent, err := ctrl.model.GetNoteByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound(fmt.Errorf("note %d: %w", id, err))
		}
		return ErrInternal(fmt.Errorf("cannot load note %d: %w", id, err))
	}
	if parent.IsReply() {
		return ErrValidation(&model.ValidationError{Fields: map[string]string{
			"parent": "cannot reply to a reply; reply to the root note instead",
		}})
	}

	in, err := bindNoteInput(c)
	if err != nil {
		return ErrInvalid(err, "invalid request body")
	}

	reply, verr := model.ValidateReplyInput(*in)
	if verr != nil {
		return ErrValidation(verr)
	}
	reply.ParentID = &parent.ID

	if err := ctrl.model.CreateNote(reply); err != nil {
		return ErrInternal(fmt.Errorf("cannot save reply: %w", err))
	}
	notesCreatedTotal.WithLabelValues("reply").Inc()
	return respond(c, http.StatusCreated, APIReplyResponse{
		Success: true,
		Reply:   apiReplyFromModel(reply),
	})
}

func (ctrl *controller) about(c echo.Context) error {
	info, err := ctrl.model.GetAboutInfo()
	if err != nil {
		return ErrInternal(fmt.Errorf("cannot load about info: %w", err))
	}
	return respond(c, http.StatusOK, APIAboutResponse{
		About: APIAbout{
			Name:        info.Name,
			Description: info.Description,
			Features:    model.SplitFeatures(info.Features),
			Version:     info.Version,
		},
	})
}

func noteIDParam(c echo.Context) (uint, error) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note id %q", c.Param("id"))
	}
	return uint(id64), nil
}

// bindNoteInput accepts both JSON and HTML form submissions. Forms go through
// go-playground/form, everything else through echo's binder.
func bindNoteInput(c echo.Context) (*model.NoteInput, error) {
	var in model.NoteInput
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEApplicationForm) ||
		strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		if err := c.Request().ParseForm(); err != nil {
			return nil, err
		}
		dec := form.NewDecoder()
		if err := dec.Decode(&in, c.Request().Form); err != nil {
			return nil, err
		}
		return &in, nil
	}
	if err := c.Bind(&in); err != nil {
		return nil, err
	}
	return &in, nil
}
