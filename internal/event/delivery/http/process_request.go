package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func userID(c *gin.Context) (string, error) {
	id := c.Param("user_id")
	if id == "" {
		return "", errMissingUserID
	}
	return id, nil
}

// processExtractReq binds the extract body and the user_id path param.
func (h *handler) processExtractReq(c *gin.Context) (extractReq, error) {
	var req extractReq
	id, err := userID(c)
	if err != nil {
		return req, err
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.l.Warnf(c.Request.Context(), "processExtractReq: %v", err)
		return req, errInvalidBody
	}
	req.UserID = id
	return req, nil
}

func (h *handler) processPreviewReq(c *gin.Context) (previewReq, error) {
	var req previewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.l.Warnf(c.Request.Context(), "processPreviewReq: %v", err)
		return req, errInvalidBody
	}
	return req, nil
}

// processListReq binds and validates the list query parameters.
func (h *handler) processListReq(c *gin.Context) (listReq, error) {
	var req listReq
	id, err := userID(c)
	if err != nil {
		return req, err
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.l.Warnf(c.Request.Context(), "processListReq: %v", err)
		return req, errInvalidBody
	}
	req.UserID = id
	return req, req.validate()
}

// processUpdateReq binds the partial update body and both path params.
func (h *handler) processUpdateReq(c *gin.Context) (updateReq, error) {
	var req updateReq
	uid, eid, err := eventParams(c)
	if err != nil {
		return req, err
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.l.Warnf(c.Request.Context(), "processUpdateReq: %v", err)
		return req, errInvalidBody
	}
	req.UserID, req.EventID = uid, eid
	return req, nil
}

func eventParams(c *gin.Context) (string, string, error) {
	uid, err := userID(c)
	if err != nil {
		return "", "", err
	}
	eid := c.Param("id")
	if eid == "" {
		return "", "", errMissingEventID
	}
	return uid, eid, nil
}

// async reports whether the caller asked for background processing.
func async(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.Query("async"))
	return err == nil && v
}
