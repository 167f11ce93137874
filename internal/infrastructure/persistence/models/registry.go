package models

// All returns one zero value of every persistence model, in dependency
// order, for AutoMigrate in tests and local tooling
func All() []any {
	return []any{
		&OrganizationModel{},
		&UserModel{},
		&MemberModel{},
		&UserRoleModel{},
		&InvitationModel{},
		&ProfileModel{},
		&DeviceTokenModel{},
		&UserPreferenceModel{},
		&LeaveTypeModel{},
		&LeaveBalanceModel{},
		&LeaveRequestModel{},
		&HolidayModel{},
		&PayrollRecordModel{},
		&PayrollLineItemModel{},
		&PayrollNotificationModel{},
		&DocumentModel{},
		&DocumentCommentModel{},
		&ProfileDocumentModel{},
		&TaskModel{},
		&ChatMessageModel{},
	}
}
