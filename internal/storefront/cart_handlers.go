package storefront

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/session"
)

// AddItem adds one unit of the posted product.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cmd := cart.Command{
		Action: cart.ActionAdd,
		ID:     strings.TrimSpace(r.PostFormValue("id")),
		Name:   strings.TrimSpace(r.PostFormValue("name")),
		Price:  strings.TrimSpace(r.PostFormValue("price")),
		Image:  strings.TrimSpace(r.PostFormValue("image")),
	}
	if cmd.ID == "" {
		common.WriteError(w, common.BadRequest("id is required"))
		return
	}
	if p, ok := h.Catalog.Find(cmd.ID); ok {
		if cmd.Name == "" {
			cmd.Name = p.Name
		}
		if cmd.Price == "" {
			cmd.Price = p.Price.String()
		}
		if cmd.Image == "" {
			cmd.Image = p.Image
		}
	}
	h.dispatch(w, r, cmd)
}

// Increment raises a line's quantity by one.
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.lineCommand(w, r, cart.Command{Action: cart.ActionIncrement, Delta: 1})
}

// Decrement lowers a line's quantity by one.
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.lineCommand(w, r, cart.Command{Action: cart.ActionDecrement, Delta: 1})
}

// Remove deletes a line.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	h.lineCommand(w, r, cart.Command{Action: cart.ActionRemove})
}

// lineCommand targets the line named by the {id} path segment or, for ids
// that cannot live in a path, the posted id field.
func (h *Handler) lineCommand(w http.ResponseWriter, r *http.Request, cmd cart.Command) {
	cmd.ID = lineID(r)
	if cmd.ID == "" {
		common.WriteError(w, common.BadRequest("id is required"))
		return
	}
	h.dispatch(w, r, cmd)
}

func lineID(r *http.Request) string {
	if raw := chi.URLParam(r, "id"); raw != "" {
		if id, err := url.PathUnescape(raw); err == nil {
			return id
		}
		return raw
	}
	id, _ := common.FormString(r, "id")
	return id
}

// Summary records the discount and payment inputs. Absent fields keep their
// current value.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		common.WriteError(w, common.BadRequest("invalid form"))
		return
	}
	var cmds []cart.Command
	if v, ok := common.FormString(r, "discount"); ok {
		cmds = append(cmds, cart.Command{Action: cart.ActionDiscount, Value: v})
	}
	if v, ok := common.FormString(r, "payment"); ok {
		cmds = append(cmds, cart.Command{Action: cart.ActionPayment, Value: v})
	}
	h.dispatch(w, r, cmds...)
}

// Clear empties the cart once the visitor confirms.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.Command{Action: cart.ActionClear})
}

// Checkout completes the purchase.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.Command{Action: cart.ActionCheckout})
}

// ViewOrder shows the itemised order.
func (h *Handler) ViewOrder(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.Command{Action: cart.ActionViewOrder})
}

// Toggle opens or closes the cart view.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.Command{Action: cart.ActionToggle})
}

type mutationMeta struct {
	Signal  string          `json:"signal,omitempty"`
	Message string          `json:"message,omitempty"`
	Dialog  *session.Dialog `json:"dialog,omitempty"`
	Receipt *cart.Receipt   `json:"receipt,omitempty"`
	Details string          `json:"details,omitempty"`
}

// dispatch runs cmds as one input event on the visitor workspace, then
// answers with a redirect or the JSON snapshot.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, cmds ...cart.Command) {
	ws := workspaceFrom(r.Context())
	if ws == nil {
		common.WriteError(w, errNoSession)
		return
	}
	prompter := newFormPrompter(r.PostFormValue("confirm"))
	var (
		meta mutationMeta
		snap cart.Snapshot
		err  error
	)
	ws.Do(h.Store.Now(), func(ws *session.Workspace) {
		ws.Cart.UsePrompter(prompter)
		defer ws.Cart.UsePrompter(nil)
		for _, cmd := range cmds {
			ctx, span := obs.StartSpan(r.Context(), "cart."+string(cmd.Action),
				attribute.String("cart.action", string(cmd.Action)),
				attribute.String("cart.item_id", cmd.ID))
			var res cart.Result
			res, err = h.Dispatcher.Dispatch(ctx, ws.Cart, cmd)
			span.SetAttributes(attribute.String("cart.signal", res.Signal.Topic))
			span.End()
			if err != nil {
				return
			}
			if !res.Signal.IsZero() {
				meta.Signal, meta.Message = res.Signal.Topic, res.Signal.Message
			}
			meta.Receipt = res.Receipt
			meta.Details = res.Details
			if prompter.asked != "" {
				ws.SetDialog(session.Dialog{Kind: session.DialogConfirm, Message: prompter.asked, Action: r.URL.Path})
			}
		}
		for _, msg := range prompter.alerts {
			ws.SetDialog(session.Dialog{Kind: session.DialogAlert, Message: msg})
		}
		if d, ok := ws.TakeDialog(); ok {
			meta.Dialog = &d
			if !wantsJSON(r) {
				ws.SetDialog(d)
			}
		}
		snap = ws.Cart.Snapshot()
	})
	if err != nil {
		if errors.Is(err, cart.ErrUnknownAction) {
			common.WriteError(w, common.BadRequest(err.Error()))
			return
		}
		h.Logger.Error().Err(err).Str("session_id", ws.ID).Msg("dispatch cart command")
		common.WriteError(w, common.Internal("unable to update cart", err))
		return
	}

	if wantsJSON(r) {
		common.Data(w, http.StatusOK, snap, meta)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
