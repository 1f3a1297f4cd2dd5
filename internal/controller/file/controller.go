// Package file provides HTTP handlers for file uploads and downloads.
package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"JobQuest-backend/internal/database"
	"JobQuest-backend/internal/model"
	"JobQuest-backend/internal/utilities"
)

const (
	resumeObjectPrefix = "resumes"
	logoObjectPrefix   = "logos"
	bannerObjectPrefix = "banners"
	avatarObjectPrefix = "avatars"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileController handles file related endpoints
type FileController struct {
	DB      *database.DBinstanceStruct
	Storage StorageClient
}

// NewFileController creates a new instance of FileController
func NewFileController(db *database.DBinstanceStruct, storage StorageClient) *FileController {
	return &FileController{
		DB:      db,
		Storage: storage,
	}
}

// readFormFile validates and reads one multipart form file. On failure the
// response is already written and nil bytes are returned.
func readFormFile(c *gin.Context, field string, allowed map[string]bool) ([]byte, string, string) {
	rawFile, err := c.FormFile(field)
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: err.Error(),
		})
		return nil, "", ""
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return nil, "", ""
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if !allowed[extension] {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return nil, "", ""
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return nil, "", ""
	}
	defer func(f multipart.File) {
		if err := f.Close(); err != nil {
			log.Printf("failed to close uploaded file: %v", err)
		}
	}(f)

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return nil, "", ""
	}

	return fileBytes, extension, rawFile.Filename
}

// persistFile uploads the bytes to the bucket and records a File row
func (fc *FileController) persistFile(user model.User, fileBytes []byte, extension, fileName, prefix string) (*model.File, error) {
	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extension)
	if err := fc.Storage.UploadFile(objectName, bytes.NewReader(fileBytes)); err != nil {
		return nil, err
	}

	file := model.File{
		ObjectName:   objectName,
		FileName:     fileName,
		Extension:    extension,
		Size:         int64(len(fileBytes)),
		UploadedByID: user.ID,
	}
	if err := fc.DB.Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// UploadResume stores a PDF resume and attaches it to the calling user's
// profile.
// @Summary Upload a resume file
// @Description Only file that smaller than 10 MB with .pdf extension is permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param resume formData file true "Upload your resume file"
// @Success 201 {object} model.File "Successfully upload resume"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /file/resume [post]
func (fc *FileController) UploadResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	fileBytes, extension, fileName := readFormFile(c, "resume", map[string]bool{".pdf": true})
	if fileBytes == nil {
		return
	}

	file, err := fc.persistFile(user, fileBytes, extension, fileName, resumeObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store resume: %s", err.Error()),
		})
		return
	}

	if err := fc.DB.Model(&user).Update("resume_file_name", file.ObjectName).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, file)
}

// UploadAvatar stores a profile picture for the calling user.
// @Summary Upload an avatar image
// @Description Only file that smaller than 10 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param avatar formData file true "Upload your avatar file"
// @Success 201 {object} model.File "Successfully upload avatar"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /file/avatar [post]
func (fc *FileController) UploadAvatar(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	fileBytes, extension, fileName := readFormFile(c, "avatar", imageExtensions)
	if fileBytes == nil {
		return
	}

	file, err := fc.persistFile(user, fileBytes, extension, fileName, avatarObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store avatar: %s", err.Error()),
		})
		return
	}

	if err := fc.DB.Model(&user).Update("avatar_file_name", file.ObjectName).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user information: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, file)
}

// companyImageUpload reads an image upload and resolves the company it
// targets, checking ownership. On failure the response is already written.
func (fc *FileController) companyImageUpload(c *gin.Context, field string) (*model.Company, []byte, string, string, model.User) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return nil, nil, "", "", user
	}

	var company model.Company
	if err := fc.DB.Where("id = ?", c.Param("company_id")).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return nil, nil, "", "", user
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company: %s", err.Error()),
		})
		return nil, nil, "", "", user
	}

	isAdmin := user.Role == model.RoleAdmin || user.Role == model.RoleSuperAdmin
	if company.OwnerID != user.ID && !isAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not the owner of this company",
		})
		return nil, nil, "", "", user
	}

	fileBytes, extension, fileName := readFormFile(c, field, imageExtensions)
	if fileBytes == nil {
		return nil, nil, "", "", user
	}

	return &company, fileBytes, extension, fileName, user
}

// UploadLogo stores a company logo.
// @Summary Upload a logo file for a company
// @Description Only file that smaller than 10 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Param logo formData file true "Upload your logo file"
// @Success 201 {object} model.File "Successfully upload logo"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this company"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /file/company/{company_id}/logo [post]
func (fc *FileController) UploadLogo(c *gin.Context) {
	company, fileBytes, extension, fileName, user := fc.companyImageUpload(c, "logo")
	if company == nil {
		return
	}

	file, err := fc.persistFile(user, fileBytes, extension, fileName, logoObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store logo: %s", err.Error()),
		})
		return
	}

	if err := fc.DB.Model(company).Update("logo_file_name", file.ObjectName).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, file)
}

// UploadBanner stores a company banner.
// @Summary Upload a banner file for a company
// @Description Only file that smaller than 10 MB with .jpg, .jpeg, or .png extension is permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_id path string true "Company ID"
// @Param banner formData file true "Upload your banner file"
// @Success 201 {object} model.File "Successfully upload banner"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this company"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /file/company/{company_id}/banner [post]
func (fc *FileController) UploadBanner(c *gin.Context) {
	company, fileBytes, extension, fileName, user := fc.companyImageUpload(c, "banner")
	if company == nil {
		return
	}

	file, err := fc.persistFile(user, fileBytes, extension, fileName, bannerObjectPrefix)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store banner: %s", err.Error()),
		})
		return
	}

	if err := fc.DB.Model(company).Update("banner_file_name", file.ObjectName).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, file)
}

// GetFile streams a stored file as a downloadable attachment.
// @Summary Retrieve a downloadable attachment
// @Tags File
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of wanted file"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Given file id not found"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /file/{id} [get]
func (fc *FileController) GetFile(c *gin.Context) {
	var file model.File
	if err := fc.DB.First(&file, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
		return
	}

	reader, size, err := fc.Storage.DownloadFile(file.ObjectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
		})
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close storage reader: %v", err)
		}
	}()

	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+fmt.Sprint(file.ID)+file.Extension)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")
	if size > 0 {
		c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
	}

	if _, err := io.Copy(c.Writer, reader); err != nil && !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	}
}
