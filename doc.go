/*
Package lora-app-sheets logs LoRa hub telemetry forwarded by Particle cloud webhooks to a Google Sheets worksheet.

lora-app-sheets runs as a small HTTP service: every GET or POST callback from the Particle cloud integration is
appended as a row to the log worksheet, and the oldest rows are pruned once the worksheet reaches its row limit.

lora-app-sheets supports the following commands:

  - run, to receive webhook callbacks and append them to the log worksheet
  - self-test, to push a synthetic event through the webhook handler
  - authorise, to authorise application access to the Google Sheets worksheet
  - get, to download the log worksheet as a TSV file
  - put, to append the rows from a TSV file to the log worksheet
  - version, to display the application version
*/
package sheets
