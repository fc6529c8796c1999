package budget_item

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pennyplan/pennyplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	Id         int           `json:"id"`
	BudgetId   int           `json:"budgetId"`
	Name       string        `json:"name"`
	Amount     float64       `json:"amount"`
	Spent      float64       `json:"spent"`
	Remaining  float64       `json:"remaining"`
	Percent    float64       `json:"percentUsed"`
	Deadline   *time.Time    `json:"deadline,omitempty"`
	Note       *string       `json:"note,omitempty"`
	Tag        *string       `json:"tag,omitempty"`
	Impulse    bool          `json:"isImpulse"`
	Continuous bool          `json:"isContinuous"`
	Recurring  bool          `json:"isRecurring"`
	SubItems   []SubItemDTO  `json:"subItems"`
}

type SubItemDTO struct {
	Id      int     `json:"id"`
	ItemId  int     `json:"itemId"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Note    *string `json:"note,omitempty"`
	Tag     *string `json:"tag,omitempty"`
	Tracked bool    `json:"tracked"`
}

type flagsDTO struct {
	Continuous *bool `json:"isContinuous,omitempty"`
	Recurring  *bool `json:"isRecurring,omitempty"`
}

type deadlineDTO struct {
	Deadline *time.Time `json:"deadline"`
}

type guardsDTO struct {
	ExceedsBudget bool    `json:"exceedsBudget"`
	RepeatOverage bool    `json:"repeatOverage"`
	Remaining     float64 `json:"remaining"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget item")
	w.Header().Set("Content-Type", "application/json")

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateItem(r.Context(), dtoToItem(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ItemToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}

	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Id != 0 && dto.Id != itemId {
		http.Error(w, "Invalid item id in request body", http.StatusBadRequest)
		return
	}
	item := dtoToItem(dto)
	item.Id = itemId

	updated, err := h.service.UpdateItem(r.Context(), item)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ItemToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetFlags(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}

	var dto flagsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Continuous == nil && dto.Recurring == nil {
		http.Error(w, "either isContinuous or isRecurring must be provided", http.StatusBadRequest)
		return
	}

	var item BudgetItem
	var err error
	if dto.Continuous != nil {
		item, err = h.service.MarkContinuous(r.Context(), itemId, *dto.Continuous)
	}
	if err == nil && dto.Recurring != nil {
		item, err = h.service.MarkRecurring(r.Context(), itemId, *dto.Recurring)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ItemToDTO(item)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}

	var dto deadlineDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SetDeadline(r.Context(), itemId, dto.Deadline); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}

	deleted, err := h.service.DeleteItem(r.Context(), itemId)
	if err != nil && !errors.Is(err, ErrItemNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckGuards evaluates the advisory budget-exceeded and duplicate-tracking
// guards for a prospective expense amount without writing anything.
func (h *Handler) CheckGuards(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid amount",
			Details: "amount must be a number",
		})
		return
	}

	item, err := h.service.GetItem(r.Context(), itemId)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := CheckGuards(item.Amount, item.Spent, amount)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(guardsDTO{
		ExceedsBudget: result.ExceedsBudget,
		RepeatOverage: result.RepeatOverage,
		Remaining:     result.Remaining,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) CreateSubItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}

	var dto SubItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	subItem := dtoToSubItem(dto)
	subItem.ItemId = itemId

	created, err := h.service.CreateSubItem(r.Context(), subItem)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(subItemToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateSubItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}
	subItemId, ok := pathId(w, r, "subItemId")
	if !ok {
		return
	}

	var dto SubItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	subItem := dtoToSubItem(dto)
	subItem.Id = subItemId
	subItem.ItemId = itemId

	updated, err := h.service.UpdateSubItem(r.Context(), subItem)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(subItemToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteSubItem(w http.ResponseWriter, r *http.Request) {
	itemId, ok := pathId(w, r, "itemId")
	if !ok {
		return
	}
	subItemId, ok := pathId(w, r, "subItemId")
	if !ok {
		return
	}

	deleted, err := h.service.DeleteSubItem(r.Context(), itemId, subItemId)
	if err != nil && !errors.Is(err, ErrSubItemNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Sub-item not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathId(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyName), errors.Is(err, ErrNonPositiveAmount), errors.Is(err, ErrSubItemsExceedParent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrSubItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ItemToDTO(item BudgetItem) ItemDTO {
	subItems := make([]SubItemDTO, 0, len(item.SubItems))
	for _, sub := range item.SubItems {
		subItems = append(subItems, subItemToDTO(sub))
	}
	return ItemDTO{
		Id:         item.Id,
		BudgetId:   item.BudgetId,
		Name:       item.Name,
		Amount:     item.Amount,
		Spent:      item.Spent,
		Remaining:  item.Remaining(),
		Percent:    PercentUsed(item.Amount, item.Spent),
		Deadline:   item.Deadline,
		Note:       item.Note,
		Tag:        item.Tag,
		Impulse:    item.Impulse,
		Continuous: item.Continuous,
		Recurring:  item.Recurring,
		SubItems:   subItems,
	}
}

func dtoToItem(dto ItemDTO) BudgetItem {
	return BudgetItem{
		Id:         dto.Id,
		BudgetId:   dto.BudgetId,
		Name:       dto.Name,
		Amount:     dto.Amount,
		Deadline:   dto.Deadline,
		Note:       dto.Note,
		Tag:        dto.Tag,
		Impulse:    dto.Impulse,
		Continuous: dto.Continuous,
		Recurring:  dto.Recurring,
	}
}

func subItemToDTO(sub SubBudgetItem) SubItemDTO {
	return SubItemDTO{
		Id:      sub.Id,
		ItemId:  sub.ItemId,
		Name:    sub.Name,
		Amount:  sub.Amount,
		Note:    sub.Note,
		Tag:     sub.Tag,
		Tracked: sub.Tracked,
	}
}

func dtoToSubItem(dto SubItemDTO) SubBudgetItem {
	return SubBudgetItem{
		Id:     dto.Id,
		ItemId: dto.ItemId,
		Name:   dto.Name,
		Amount: dto.Amount,
		Note:   dto.Note,
		Tag:    dto.Tag,
	}
}
