// Package meet creates Google Meet spaces.
//
// The calendar client asks Google Calendar to attach a Meet conference to
// every booked event. When the calendar returns no video entry point, or
// when the deployment is configured to create conferences directly, a Meet
// space is created here and its meeting URI becomes the meeting's link.
//
//	client, err := meet.NewClient(ctx, "default", oauthConf, tokens)
//	if err != nil {
//	    return err
//	}
//	link, err := client.MeetingLink(ctx)
package meet
