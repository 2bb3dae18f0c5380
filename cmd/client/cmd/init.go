package cmd

import (
	"cipherkeeper/cmd/client/cmd/auth"
	"cipherkeeper/cmd/client/cmd/record"
	"cipherkeeper/cmd/client/cmd/share"
)

func init() {
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.WhoamiCmd)
	auth.AuthCmd.AddCommand(auth.ChangePasswordCmd)
	auth.AuthCmd.AddCommand(auth.ProfilesCmd)
	auth.AuthCmd.AddCommand(auth.ForgetCmd)

	rootCmd.AddCommand(record.RecordCmd)
	record.RecordCmd.AddCommand(record.CreateCmd)
	record.RecordCmd.AddCommand(record.GetCmd)
	record.RecordCmd.AddCommand(record.ListCmd)
	record.RecordCmd.AddCommand(record.UpdateCmd)
	record.RecordCmd.AddCommand(record.DeleteCmd)

	rootCmd.AddCommand(share.ShareCmd)
	rootCmd.AddCommand(share.RevokeCmd)
}
