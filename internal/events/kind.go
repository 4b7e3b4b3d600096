package events

import "strings"

// EventKind identifies an activity event category. The universe mirrors the
// EventType enumeration of Keycloak 24.0 and must stay in lock-step with the
// platform release herald is deployed against.
type EventKind string

// OperationKind identifies an administrative mutation category.
type OperationKind string

// errorMarker is the identifier fragment shared by all failure kinds.
const errorMarker = "_ERROR"

const (
	EventLogin                               EventKind = "LOGIN"
	EventLoginError                          EventKind = "LOGIN_ERROR"
	EventRegister                            EventKind = "REGISTER"
	EventRegisterError                       EventKind = "REGISTER_ERROR"
	EventLogout                              EventKind = "LOGOUT"
	EventLogoutError                         EventKind = "LOGOUT_ERROR"
	EventCodeToToken                         EventKind = "CODE_TO_TOKEN"
	EventCodeToTokenError                    EventKind = "CODE_TO_TOKEN_ERROR"
	EventClientLogin                         EventKind = "CLIENT_LOGIN"
	EventClientLoginError                    EventKind = "CLIENT_LOGIN_ERROR"
	EventRefreshToken                        EventKind = "REFRESH_TOKEN"
	EventRefreshTokenError                   EventKind = "REFRESH_TOKEN_ERROR"
	EventValidateAccessToken                 EventKind = "VALIDATE_ACCESS_TOKEN"
	EventValidateAccessTokenError            EventKind = "VALIDATE_ACCESS_TOKEN_ERROR"
	EventIntrospectToken                     EventKind = "INTROSPECT_TOKEN"
	EventIntrospectTokenError                EventKind = "INTROSPECT_TOKEN_ERROR"
	EventFederatedIdentityLink               EventKind = "FEDERATED_IDENTITY_LINK"
	EventFederatedIdentityLinkError          EventKind = "FEDERATED_IDENTITY_LINK_ERROR"
	EventRemoveFederatedIdentity             EventKind = "REMOVE_FEDERATED_IDENTITY"
	EventRemoveFederatedIdentityError        EventKind = "REMOVE_FEDERATED_IDENTITY_ERROR"
	EventUpdateEmail                         EventKind = "UPDATE_EMAIL"
	EventUpdateEmailError                    EventKind = "UPDATE_EMAIL_ERROR"
	EventUpdateProfile                       EventKind = "UPDATE_PROFILE"
	EventUpdateProfileError                  EventKind = "UPDATE_PROFILE_ERROR"
	EventUpdatePassword                      EventKind = "UPDATE_PASSWORD"
	EventUpdatePasswordError                 EventKind = "UPDATE_PASSWORD_ERROR"
	EventUpdateTOTP                          EventKind = "UPDATE_TOTP"
	EventUpdateTOTPError                     EventKind = "UPDATE_TOTP_ERROR"
	EventUpdateCredential                    EventKind = "UPDATE_CREDENTIAL"
	EventUpdateCredentialError               EventKind = "UPDATE_CREDENTIAL_ERROR"
	EventVerifyEmail                         EventKind = "VERIFY_EMAIL"
	EventVerifyEmailError                    EventKind = "VERIFY_EMAIL_ERROR"
	EventVerifyProfile                       EventKind = "VERIFY_PROFILE"
	EventVerifyProfileError                  EventKind = "VERIFY_PROFILE_ERROR"
	EventRemoveTOTP                          EventKind = "REMOVE_TOTP"
	EventRemoveTOTPError                     EventKind = "REMOVE_TOTP_ERROR"
	EventRemoveCredential                    EventKind = "REMOVE_CREDENTIAL"
	EventRemoveCredentialError               EventKind = "REMOVE_CREDENTIAL_ERROR"
	EventGrantConsent                        EventKind = "GRANT_CONSENT"
	EventGrantConsentError                   EventKind = "GRANT_CONSENT_ERROR"
	EventUpdateConsent                       EventKind = "UPDATE_CONSENT"
	EventUpdateConsentError                  EventKind = "UPDATE_CONSENT_ERROR"
	EventRevokeGrant                         EventKind = "REVOKE_GRANT"
	EventRevokeGrantError                    EventKind = "REVOKE_GRANT_ERROR"
	EventSendVerifyEmail                     EventKind = "SEND_VERIFY_EMAIL"
	EventSendVerifyEmailError                EventKind = "SEND_VERIFY_EMAIL_ERROR"
	EventSendResetPassword                   EventKind = "SEND_RESET_PASSWORD"
	EventSendResetPasswordError              EventKind = "SEND_RESET_PASSWORD_ERROR"
	EventSendIdentityProviderLink            EventKind = "SEND_IDENTITY_PROVIDER_LINK"
	EventSendIdentityProviderLinkError       EventKind = "SEND_IDENTITY_PROVIDER_LINK_ERROR"
	EventResetPassword                       EventKind = "RESET_PASSWORD"
	EventResetPasswordError                  EventKind = "RESET_PASSWORD_ERROR"
	EventRestartAuthentication               EventKind = "RESTART_AUTHENTICATION"
	EventRestartAuthenticationError          EventKind = "RESTART_AUTHENTICATION_ERROR"
	EventInvalidSignature                    EventKind = "INVALID_SIGNATURE"
	EventInvalidSignatureError               EventKind = "INVALID_SIGNATURE_ERROR"
	EventRegisterNode                        EventKind = "REGISTER_NODE"
	EventRegisterNodeError                   EventKind = "REGISTER_NODE_ERROR"
	EventUnregisterNode                      EventKind = "UNREGISTER_NODE"
	EventUnregisterNodeError                 EventKind = "UNREGISTER_NODE_ERROR"
	EventUserInfoRequest                     EventKind = "USER_INFO_REQUEST"
	EventUserInfoRequestError                EventKind = "USER_INFO_REQUEST_ERROR"
	EventIdentityProviderLinkAccount         EventKind = "IDENTITY_PROVIDER_LINK_ACCOUNT"
	EventIdentityProviderLinkAccountError    EventKind = "IDENTITY_PROVIDER_LINK_ACCOUNT_ERROR"
	EventIdentityProviderLogin               EventKind = "IDENTITY_PROVIDER_LOGIN"
	EventIdentityProviderLoginError          EventKind = "IDENTITY_PROVIDER_LOGIN_ERROR"
	EventIdentityProviderFirstLogin          EventKind = "IDENTITY_PROVIDER_FIRST_LOGIN"
	EventIdentityProviderFirstLoginError     EventKind = "IDENTITY_PROVIDER_FIRST_LOGIN_ERROR"
	EventIdentityProviderPostLogin           EventKind = "IDENTITY_PROVIDER_POST_LOGIN"
	EventIdentityProviderPostLoginError      EventKind = "IDENTITY_PROVIDER_POST_LOGIN_ERROR"
	EventIdentityProviderResponse            EventKind = "IDENTITY_PROVIDER_RESPONSE"
	EventIdentityProviderResponseError       EventKind = "IDENTITY_PROVIDER_RESPONSE_ERROR"
	EventIdentityProviderRetrieveToken       EventKind = "IDENTITY_PROVIDER_RETRIEVE_TOKEN"
	EventIdentityProviderRetrieveTokenError  EventKind = "IDENTITY_PROVIDER_RETRIEVE_TOKEN_ERROR"
	EventImpersonate                         EventKind = "IMPERSONATE"
	EventImpersonateError                    EventKind = "IMPERSONATE_ERROR"
	EventCustomRequiredAction                EventKind = "CUSTOM_REQUIRED_ACTION"
	EventCustomRequiredActionError           EventKind = "CUSTOM_REQUIRED_ACTION_ERROR"
	EventExecuteActions                      EventKind = "EXECUTE_ACTIONS"
	EventExecuteActionsError                 EventKind = "EXECUTE_ACTIONS_ERROR"
	EventExecuteActionToken                  EventKind = "EXECUTE_ACTION_TOKEN"
	EventExecuteActionTokenError             EventKind = "EXECUTE_ACTION_TOKEN_ERROR"
	EventClientInfo                          EventKind = "CLIENT_INFO"
	EventClientInfoError                     EventKind = "CLIENT_INFO_ERROR"
	EventClientRegister                      EventKind = "CLIENT_REGISTER"
	EventClientRegisterError                 EventKind = "CLIENT_REGISTER_ERROR"
	EventClientUpdate                        EventKind = "CLIENT_UPDATE"
	EventClientUpdateError                   EventKind = "CLIENT_UPDATE_ERROR"
	EventClientDelete                        EventKind = "CLIENT_DELETE"
	EventClientDeleteError                   EventKind = "CLIENT_DELETE_ERROR"
	EventClientInitiatedAccountLinking       EventKind = "CLIENT_INITIATED_ACCOUNT_LINKING"
	EventClientInitiatedAccountLinkingError  EventKind = "CLIENT_INITIATED_ACCOUNT_LINKING_ERROR"
	EventTokenExchange                       EventKind = "TOKEN_EXCHANGE"
	EventTokenExchangeError                  EventKind = "TOKEN_EXCHANGE_ERROR"
	EventOAuth2DeviceAuth                    EventKind = "OAUTH2_DEVICE_AUTH"
	EventOAuth2DeviceAuthError               EventKind = "OAUTH2_DEVICE_AUTH_ERROR"
	EventOAuth2DeviceVerifyUserCode          EventKind = "OAUTH2_DEVICE_VERIFY_USER_CODE"
	EventOAuth2DeviceVerifyUserCodeError     EventKind = "OAUTH2_DEVICE_VERIFY_USER_CODE_ERROR"
	EventOAuth2DeviceCodeToToken             EventKind = "OAUTH2_DEVICE_CODE_TO_TOKEN"
	EventOAuth2DeviceCodeToTokenError        EventKind = "OAUTH2_DEVICE_CODE_TO_TOKEN_ERROR"
	EventAuthReqIDToToken                    EventKind = "AUTHREQID_TO_TOKEN"
	EventAuthReqIDToTokenError               EventKind = "AUTHREQID_TO_TOKEN_ERROR"
	EventPermissionToken                     EventKind = "PERMISSION_TOKEN"
	EventPermissionTokenError                EventKind = "PERMISSION_TOKEN_ERROR"
	EventDeleteAccount                       EventKind = "DELETE_ACCOUNT"
	EventDeleteAccountError                  EventKind = "DELETE_ACCOUNT_ERROR"
	EventPushedAuthorizationRequest          EventKind = "PUSHED_AUTHORIZATION_REQUEST"
	EventPushedAuthorizationRequestError     EventKind = "PUSHED_AUTHORIZATION_REQUEST_ERROR"
	EventUserDisabledByPermanentLockout      EventKind = "USER_DISABLED_BY_PERMANENT_LOCKOUT"
	EventUserDisabledByPermanentLockoutError EventKind = "USER_DISABLED_BY_PERMANENT_LOCKOUT_ERROR"
	EventUserDisabledByTemporaryLockout      EventKind = "USER_DISABLED_BY_TEMPORARY_LOCKOUT"
	EventUserDisabledByTemporaryLockoutError EventKind = "USER_DISABLED_BY_TEMPORARY_LOCKOUT_ERROR"
)

const (
	OperationCreate OperationKind = "CREATE"
	OperationUpdate OperationKind = "UPDATE"
	OperationDelete OperationKind = "DELETE"
	OperationAction OperationKind = "ACTION"
)

// eventKinds lists the universe in declaration order. Callers get copies.
var eventKinds = []EventKind{
	EventLogin, EventLoginError,
	EventRegister, EventRegisterError,
	EventLogout, EventLogoutError,
	EventCodeToToken, EventCodeToTokenError,
	EventClientLogin, EventClientLoginError,
	EventRefreshToken, EventRefreshTokenError,
	EventValidateAccessToken, EventValidateAccessTokenError,
	EventIntrospectToken, EventIntrospectTokenError,
	EventFederatedIdentityLink, EventFederatedIdentityLinkError,
	EventRemoveFederatedIdentity, EventRemoveFederatedIdentityError,
	EventUpdateEmail, EventUpdateEmailError,
	EventUpdateProfile, EventUpdateProfileError,
	EventUpdatePassword, EventUpdatePasswordError,
	EventUpdateTOTP, EventUpdateTOTPError,
	EventUpdateCredential, EventUpdateCredentialError,
	EventVerifyEmail, EventVerifyEmailError,
	EventVerifyProfile, EventVerifyProfileError,
	EventRemoveTOTP, EventRemoveTOTPError,
	EventRemoveCredential, EventRemoveCredentialError,
	EventGrantConsent, EventGrantConsentError,
	EventUpdateConsent, EventUpdateConsentError,
	EventRevokeGrant, EventRevokeGrantError,
	EventSendVerifyEmail, EventSendVerifyEmailError,
	EventSendResetPassword, EventSendResetPasswordError,
	EventSendIdentityProviderLink, EventSendIdentityProviderLinkError,
	EventResetPassword, EventResetPasswordError,
	EventRestartAuthentication, EventRestartAuthenticationError,
	EventInvalidSignature, EventInvalidSignatureError,
	EventRegisterNode, EventRegisterNodeError,
	EventUnregisterNode, EventUnregisterNodeError,
	EventUserInfoRequest, EventUserInfoRequestError,
	EventIdentityProviderLinkAccount, EventIdentityProviderLinkAccountError,
	EventIdentityProviderLogin, EventIdentityProviderLoginError,
	EventIdentityProviderFirstLogin, EventIdentityProviderFirstLoginError,
	EventIdentityProviderPostLogin, EventIdentityProviderPostLoginError,
	EventIdentityProviderResponse, EventIdentityProviderResponseError,
	EventIdentityProviderRetrieveToken, EventIdentityProviderRetrieveTokenError,
	EventImpersonate, EventImpersonateError,
	EventCustomRequiredAction, EventCustomRequiredActionError,
	EventExecuteActions, EventExecuteActionsError,
	EventExecuteActionToken, EventExecuteActionTokenError,
	EventClientInfo, EventClientInfoError,
	EventClientRegister, EventClientRegisterError,
	EventClientUpdate, EventClientUpdateError,
	EventClientDelete, EventClientDeleteError,
	EventClientInitiatedAccountLinking, EventClientInitiatedAccountLinkingError,
	EventTokenExchange, EventTokenExchangeError,
	EventOAuth2DeviceAuth, EventOAuth2DeviceAuthError,
	EventOAuth2DeviceVerifyUserCode, EventOAuth2DeviceVerifyUserCodeError,
	EventOAuth2DeviceCodeToToken, EventOAuth2DeviceCodeToTokenError,
	EventAuthReqIDToToken, EventAuthReqIDToTokenError,
	EventPermissionToken, EventPermissionTokenError,
	EventDeleteAccount, EventDeleteAccountError,
	EventPushedAuthorizationRequest, EventPushedAuthorizationRequestError,
	EventUserDisabledByPermanentLockout, EventUserDisabledByPermanentLockoutError,
	EventUserDisabledByTemporaryLockout, EventUserDisabledByTemporaryLockoutError,
}

var operationKinds = []OperationKind{
	OperationCreate,
	OperationUpdate,
	OperationDelete,
	OperationAction,
}

// AllEventKinds returns every activity kind known to the platform.
func AllEventKinds() []EventKind {
	return append([]EventKind(nil), eventKinds...)
}

// ErrorEventKinds returns the failure subset of AllEventKinds.
func ErrorEventKinds() []EventKind {
	var out []EventKind
	for _, k := range eventKinds {
		if k.IsError() {
			out = append(out, k)
		}
	}
	return out
}

// AllOperationKinds returns every administrative operation kind.
func AllOperationKinds() []OperationKind {
	return append([]OperationKind(nil), operationKinds...)
}

// IsError reports whether the kind records a failed attempt.
func (k EventKind) IsError() bool {
	return strings.Contains(string(k), errorMarker)
}

func (k EventKind) String() string { return string(k) }

func (k OperationKind) String() string { return string(k) }
