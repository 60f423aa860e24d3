package storefront

import (
	"errors"
	"net/http"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/reviews"
	"github.com/noah-isme/toko-storefront/internal/session"
)

const reviewFormIncomplete = "Please fill in your name, a rating from 1 to 5 and your review."

// SubmitReview validates the review form and records the review.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if ws == nil {
		common.WriteError(w, errNoSession)
		return
	}
	sub := reviews.Submission{
		Name:    r.PostFormValue("name"),
		Rating:  common.FormInt(r, "rating", 0),
		Content: r.PostFormValue("content"),
	}.Normalize()

	if err := sub.Validate(); err != nil {
		var verr *reviews.ValidationError
		if wantsJSON(r) {
			var details any
			if errors.As(err, &verr) {
				details = verr.Fields
			}
			common.WriteError(w, common.Unprocessable("invalid review", details))
			return
		}
		ws.Do(h.Store.Now(), func(ws *session.Workspace) {
			ws.SetDialog(session.Dialog{Kind: session.DialogAlert, Message: reviewFormIncomplete})
		})
		http.Redirect(w, r, "/#reviews", http.StatusSeeOther)
		return
	}

	var entry reviews.Entry
	ws.Do(h.Store.Now(), func(ws *session.Workspace) {
		entry = ws.Reviews.Submit(r.Context(), sub.Name, sub.Rating, sub.Content)
	})

	if wantsJSON(r) {
		common.Data(w, http.StatusCreated, entry, nil)
		return
	}
	http.Redirect(w, r, "/#reviews", http.StatusSeeOther)
}
