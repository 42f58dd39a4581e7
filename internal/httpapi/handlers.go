package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/kandang/internal/lineage"
	"github.com/rcliao/kandang/internal/model"
	"github.com/rcliao/kandang/internal/store"
)

var errBadRequest = errors.New("bad request")

func collectionParam(c *gin.Context) (model.Collection, error) {
	return model.ParseCollection(c.Param("collection"))
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errBadRequest, name, v)
	}
	return b, nil
}

func bindRecord(c *gin.Context) (model.Record, error) {
	var rec model.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if rec == nil {
		rec = model.Record{}
	}
	return rec, nil
}

func (s *Server) list(c *gin.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	force, err := boolQuery(c, "refresh")
	if err != nil {
		return err
	}

	if breedingID := c.Query("breeding_id"); breedingID != "" {
		if coll != model.Offspring {
			return fmt.Errorf("%w: breeding_id filters %s only", errBadRequest, model.Offspring)
		}
		res, err := s.svc.ReadOffspring(c.Request.Context(), breedingID, force)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, res)
		return nil
	}

	res, err := s.svc.Read(c.Request.Context(), coll, force)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, res)
	return nil
}

func (s *Server) get(c *gin.Context) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}
	res, err := s.svc.Read(c.Request.Context(), coll, false)
	if err != nil {
		return err
	}
	id := c.Param("id")
	for _, r := range res.Records {
		if r.ID() == id {
			c.JSON(http.StatusOK, gin.H{"data": r, "from_cache": res.FromCache, "stale": res.Stale})
			return nil
		}
	}
	return fmt.Errorf("%s %s: %w", coll, id, store.ErrNotFound)
}

func (s *Server) write(c *gin.Context, op model.Op, status int) error {
	coll, err := collectionParam(c)
	if err != nil {
		return err
	}

	rec := model.Record{}
	if op != model.OpDelete {
		if rec, err = bindRecord(c); err != nil {
			return err
		}
	}
	if id := c.Param("id"); id != "" {
		rec["id"] = id
	}

	res, err := s.svc.Write(c.Request.Context(), op, coll, rec)
	if err != nil {
		return err
	}
	c.JSON(status, res)
	return nil
}

func (s *Server) create(c *gin.Context) error { return s.write(c, model.OpCreate, http.StatusCreated) }
func (s *Server) update(c *gin.Context) error { return s.write(c, model.OpUpdate, http.StatusOK) }
func (s *Server) remove(c *gin.Context) error { return s.write(c, model.OpDelete, http.StatusOK) }

func (s *Server) refresh(c *gin.Context) error {
	outcome, err := s.svc.RefreshAll(c.Request.Context())
	body := gin.H{"results": outcome}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
	return nil
}

func (s *Server) clear(c *gin.Context) error {
	if err := s.svc.ClearCache(c.Request.Context()); err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
	return nil
}

func (s *Server) stats(c *gin.Context) error {
	st, err := s.svc.Stats(c.Request.Context())
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, st)
	return nil
}

func (s *Server) tree(c *gin.Context) error {
	force, err := boolQuery(c, "refresh")
	if err != nil {
		return err
	}
	snap, err := lineage.Load(c.Request.Context(), s.svc, force)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{"stale": snap.Stale, "data": lineage.Search(snap.Tree(), c.Query("q"))})
	return nil
}

func (s *Server) workflow(c *gin.Context) error {
	snap, err := lineage.Load(c.Request.Context(), s.svc, false)
	if err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{"stale": snap.Stale, "data": snap.Workflow(s.now())})
	return nil
}
