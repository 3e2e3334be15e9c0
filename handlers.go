package main

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"aurora/models"
	"aurora/pkg/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupRoutes(r *gin.Engine) {
	r.POST("/api/users/register", registerHandler)
	r.POST("/api/auth/login", loginHandler)
	r.POST("/api/auth/refresh", refreshHandler)
	r.POST("/api/auth/logout", logoutHandler)
	authGroup := r.Group("/api")
	authGroup.Use(bearerAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.GET("/users/:id", getUserHandler)
	authGroup.GET("/folders", listFoldersHandler)
	authGroup.GET("/folders/:id", getFolderHandler)
	authGroup.POST("/folders", createFolderHandler)
	authGroup.PUT("/folders/:id", updateFolderHandler)
	authGroup.DELETE("/folders/:id", deleteFolderHandler)
	authGroup.GET("/notes", listNotesHandler)
	authGroup.GET("/notes/:id", getNoteHandler)
	authGroup.POST("/notes", createNoteHandler)
	authGroup.PUT("/notes/:id", updateNoteHandler)
	authGroup.DELETE("/notes/:id", deleteNoteHandler)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": message})
}

// bearerAuthMiddleware resolves the calling principal from the access token
// before any resource handler runs. The policy is strict: a missing or
// invalid bearer token is rejected immediately. Only the signature and
// expiry are checked here; access tokens are stateless on purpose, the
// refresh token store is never consulted on the request path.
func bearerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid authorization header")
			return
		}
		username, _, err := session.Decode(parts[1], sessions.AccessContext())
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated user using the
// username set by bearerAuthMiddleware.
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	uname := unameVal.(string)
	var user models.User
	if err := db.Where("username = ?", uname).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string)})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := sessions.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			unauthorized(c, "Invalid credentials")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// refreshHandler exchanges a refresh token for a new pair; the presented
// token is consumed in the process.
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := sessions.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			unauthorized(c, "Invalid refresh token")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

func logoutHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sessions.Logout(req.RefreshToken); err != nil {
		unauthorized(c, "Invalid refresh token")
		return
	}
	c.Status(http.StatusNoContent)
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username  string `json:"username" binding:"required"`
		Password  string `json:"password" binding:"required"`
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := RegisterUser(registration{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func getUserHandler(c *gin.Context) {
	var user models.User
	if err := db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, userResponse(&user))
}

func userResponse(user *models.User) gin.H {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
	}
}

type noteSummary struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	ModifiedDate int64  `json:"modifiedDate"`
}

type folderResponse struct {
	ID         uint          `json:"id"`
	FolderName string        `json:"folderName"`
	Notes      []noteSummary `json:"notes"`
}

type noteResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	FolderID     uint   `json:"folderId"`
	ModifiedDate int64  `json:"modifiedDate"`
}

// snippet returns the first 50 characters of a note's content for folder
// listings.
func snippet(content string) string {
	const max = 50
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max])
}

func toFolderResponse(f *models.Folder) folderResponse {
	notes := make([]noteSummary, 0, len(f.Notes))
	for _, n := range f.Notes {
		notes = append(notes, noteSummary{
			ID:           n.ID,
			Title:        n.Title,
			Snippet:      snippet(n.Content),
			ModifiedDate: n.ModifiedDate,
		})
	}
	return folderResponse{ID: f.ID, FolderName: f.FolderName, Notes: notes}
}

func toNoteResponse(n *models.Note) noteResponse {
	return noteResponse{
		ID:           n.ID,
		Title:        n.Title,
		Content:      n.Content,
		FolderID:     n.FolderID,
		ModifiedDate: n.ModifiedDate,
	}
}

func listFoldersHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var folders []models.Folder
	if err := db.Preload("Notes").Where("user_id = ?", user.ID).Order("id").Find(&folders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]folderResponse, 0, len(folders))
	for i := range folders {
		out = append(out, toFolderResponse(&folders[i]))
	}
	c.JSON(http.StatusOK, out)
}

func getFolderHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var folder models.Folder
	if err := db.Preload("Notes").Where("user_id = ?", user.ID).First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder Not Found"})
		return
	}
	c.JSON(http.StatusOK, toFolderResponse(&folder))
}

func createFolderHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var req struct {
		FolderName string `json:"folderName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	folder := models.Folder{UserID: user.ID, FolderName: req.FolderName}
	if err := db.Create(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, toFolderResponse(&folder))
}

func updateFolderHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var req struct {
		FolderName string `json:"folderName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var folder models.Folder
	if err := db.Where("user_id = ?", user.ID).First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder Not Found"})
		return
	}
	folder.FolderName = req.FolderName
	if err := db.Save(&folder).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, folderResponse{ID: folder.ID, FolderName: folder.FolderName, Notes: []noteSummary{}})
}

// deleteFolderHandler deletes a folder. A folder that still contains notes
// is only deleted when cascadeDelete=true; otherwise the request fails so a
// client cannot drop notes by accident.
func deleteFolderHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	cascade := c.DefaultQuery("cascadeDelete", "false") == "true"
	var folder models.Folder
	if err := db.Where("user_id = ?", user.ID).First(&folder, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder Not Found"})
		return
	}
	// the count guards against accidental note loss, so a failed count must
	// not fall through to the delete
	var noteCount int64
	if err := db.Model(&models.Note{}).Where("folder_id = ?", folder.ID).Count(&noteCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if noteCount > 0 && !cascade {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Folder Not Empty",
			"message": "Cannot delete folder with existing notes. Use cascadeDelete=true.",
		})
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id = ?", folder.ID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&folder).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func listNotesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var notes []models.Note
	if err := db.Where("user_id = ?", user.ID).Order("id").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	out := make([]noteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}
	c.JSON(http.StatusOK, out)
}

func getNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var note models.Note
	if err := db.Where("user_id = ?", user.ID).First(&note, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, toNoteResponse(&note))
}

func createNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var req struct {
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content"`
		FolderID uint   `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FolderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder ID is required"})
		return
	}
	var folder models.Folder
	if err := db.Where("user_id = ?", user.ID).First(&folder, req.FolderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder Not Found"})
		return
	}
	note := models.Note{
		UserID:       user.ID,
		FolderID:     folder.ID,
		Title:        req.Title,
		Content:      req.Content,
		ModifiedDate: time.Now().UnixMilli(),
	}
	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, toNoteResponse(&note))
}

func updateNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var req struct {
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content"`
		FolderID uint   `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var note models.Note
	if err := db.Where("user_id = ?", user.ID).First(&note, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	// moving the note is optional; the target folder must belong to the caller
	if req.FolderID != 0 && req.FolderID != note.FolderID {
		var folder models.Folder
		if err := db.Where("user_id = ?", user.ID).First(&folder, req.FolderID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Folder Not Found"})
			return
		}
		note.FolderID = folder.ID
	}
	note.Title = req.Title
	note.Content = req.Content
	note.ModifiedDate = time.Now().UnixMilli()
	if err := db.Save(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, toNoteResponse(&note))
}

func deleteNoteHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		unauthorized(c, "user not found")
		return
	}
	var note models.Note
	if err := db.Where("user_id = ?", user.ID).First(&note, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	if err := db.Delete(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
