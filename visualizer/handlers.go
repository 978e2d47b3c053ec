package visualizer

import (
	"net/http"

	"modelviz.dev/modelviz/introspect"
	"modelviz.dev/modelviz/odm"
)

// listModels serves GET /api/models.
func (v *Visualizer) listModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	models, err := introspect.Summarize(v.registry)
	if err != nil {
		writeError(ctx, w, NewError(err, http.StatusInternalServerError))
		return
	}
	writeCacheable(ctx, w, r, Envelope{
		Success: true,
		Data:    models,
		Title:   v.title,
	})
}

// getModel serves GET /api/models/{modelName}.
func (v *Visualizer) getModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model, err := introspect.Describe(v.registry, r.PathValue("modelName"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeCacheable(ctx, w, r, Envelope{Success: true, Data: model})
}

// getSchema serves GET /api/models/{modelName}/schema.
func (v *Visualizer) getSchema(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model, err := v.lookup(r.PathValue("modelName"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeCacheable(ctx, w, r, Envelope{Success: true, Data: model.JSONSchema()})
}

// getData serves GET /api/models/{modelName}/data.
func (v *Visualizer) getData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model, err := v.lookup(r.PathValue("modelName"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := parsePageRequest(r.URL.Query())
	total, err := model.CountDocuments(ctx, req.filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	records, err := model.Find(ctx, odm.FindOptions{
		Filter: req.filter,
		Sort:   req.sort,
		Skip:   req.skip,
		Limit:  req.limit,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if records == nil {
		records = []odm.Document{}
	}

	writeJSON(ctx, w, http.StatusOK, Envelope{
		Success: true,
		Data: DataPage{
			Records:    records,
			Pagination: newPagination(req, total),
		},
	})
}

// apiFallback answers every other /api/ request.
func (v *Visualizer) apiFallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(r.Context(), w, NewError(errMethodNotAllowed(r.Method), http.StatusMethodNotAllowed))
		return
	}
	writeError(r.Context(), w, NewError(errNoRoute(r.URL.Path), http.StatusNotFound))
}

func (v *Visualizer) lookup(name string) (*odm.Model, error) {
	model, err := v.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, odm.ErrModelNotFound
	}
	return model, nil
}
