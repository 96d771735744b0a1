// internal/domain/user/admin_service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/pos-backend/internal/config"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, cfg *config.Config) *AdminService {
	return &AdminService{
		db:     db,
		config: cfg,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // admin, operator, all
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// UserStatusUpdateRequest represents user status update data
type UserStatusUpdateRequest struct {
	IsActive bool   `json:"is_active"`
	Reason   string `json:"reason,omitempty"`
}

// UserAdminToggleRequest represents admin status toggle data
type UserAdminToggleRequest struct {
	IsAdmin bool   `json:"is_admin"`
	Reason  string `json:"reason,omitempty"`
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(req *UserListRequest) (*UserListResponse, error) {
	var users []User
	var total int64

	query := s.db.Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			searchTerm, searchTerm, searchTerm, "%"+req.Search+"%",
		)
	}

	if req.Status != "" && req.Status != "all" {
		if req.Status == "active" {
			query = query.Where("is_active = ?", true)
		} else if req.Status == "inactive" {
			query = query.Where("is_active = ?", false)
		}
	}

	if req.Role != "" && req.Role != "all" {
		if req.Role == "admin" {
			query = query.Where("is_admin = ?", true)
		} else if req.Role == "operator" {
			query = query.Where("is_admin = ?", false)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	orderClause := req.SortBy
	if req.SortOrder == "desc" {
		orderClause += " DESC"
	} else {
		orderClause += " ASC"
	}
	query = query.Order(orderClause)

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	for i := range users {
		users[i].Password = ""
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &UserListResponse{
		Users:      users,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetUser retrieves a single user by ID
func (s *AdminService) GetUser(userID uint) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	user.Password = ""
	return &user, nil
}

// UpdateUserStatus updates user active status
func (s *AdminService) UpdateUserStatus(userID uint, req *UserStatusUpdateRequest, adminID uint) error {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	// Prevent admin from deactivating themselves
	if userID == adminID && !req.IsActive {
		return fmt.Errorf("cannot deactivate your own account")
	}

	updates := map[string]interface{}{
		"is_active":  req.IsActive,
		"updated_at": time.Now(),
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return nil
}

// ToggleUserAdmin toggles user admin status
func (s *AdminService) ToggleUserAdmin(userID uint, req *UserAdminToggleRequest, adminID uint) error {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("user not found")
	}

	// Prevent admin from removing their own admin privileges
	if userID == adminID && !req.IsAdmin {
		return fmt.Errorf("cannot remove your own admin privileges")
	}

	// Check if there will be at least one admin left
	if !req.IsAdmin {
		var adminCount int64
		s.db.Model(&User{}).Where("is_admin = ? AND id != ?", true, userID).Count(&adminCount)
		if adminCount == 0 {
			return fmt.Errorf("cannot remove admin privileges: at least one admin must remain")
		}
	}

	updates := map[string]interface{}{
		"is_admin":   req.IsAdmin,
		"updated_at": time.Now(),
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update admin status: %w", err)
	}

	return nil
}
