package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docgen-workers/internal/models"
	ac "docgen-workers/internal/workers/document/assemble-context"
	bvp "docgen-workers/internal/workers/document/build-vision-prompt"
	pdr "docgen-workers/internal/workers/document/parse-draft-response"
)

func newAssembleCmd(opts *rootOptions) *cobra.Command {
	var jobID, capturesFile string

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build an assembled context from a captures file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readJSONFile(capturesFile)
			if err != nil {
				return err
			}

			var captures []models.Capture
			if err := json.Unmarshal(unwrap(raw, "captures"), &captures); err != nil {
				return fmt.Errorf("decode captures: %w", err)
			}

			h := ac.NewHandler(ac.LoadConfig(), opts.log)
			out, err := h.Execute(commandContext(cmd), &ac.Input{JobID: jobID, Captures: captures})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&jobID, "job-id", "", "job id to tag the context with")
	cmd.Flags().StringVar(&capturesFile, "captures", "", "JSON file with a captures array")
	_ = cmd.MarkFlagRequired("captures")
	return cmd
}

func newPromptCmd(opts *rootOptions) *cobra.Command {
	var templateFile, contextFile string
	cfg := bvp.LoadConfig()

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Build a vision chat request from a template and an assembled context",
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := readJSONFile(templateFile)
			if err != nil {
				return err
			}
			rawCtx, err := readJSONFile(contextFile)
			if err != nil {
				return err
			}

			var assembled models.AssembledContext
			if err := json.Unmarshal(unwrap(rawCtx, "assembled_context"), &assembled); err != nil {
				return fmt.Errorf("decode assembled context: %w", err)
			}

			h := bvp.NewHandler(cfg, opts.log)
			out, err := h.Execute(commandContext(cmd), &bvp.Input{
				PromptTemplate:   unwrap(tmpl, "prompt_template"),
				AssembledContext: &assembled,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&templateFile, "template", "", "JSON file with the prompt template (object or one-element array)")
	cmd.Flags().StringVar(&contextFile, "context", "", "JSON file with the assembled context")
	cmd.Flags().StringVar(&cfg.Model, "model", cfg.Model, "model name")
	cmd.Flags().IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "completion token limit")
	cmd.Flags().StringVar(&cfg.ImageDetail, "image-detail", cfg.ImageDetail, "image detail level")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("context")
	return cmd
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	var responseFile, templateFile, jobID string
	var untagged bool

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Turn a chat completions response into a draft document",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := readJSONFile(responseFile)
			if err != nil {
				return err
			}

			input := &pdr.Input{
				ChatResponse: unwrap(resp, "chat_response"),
				JobID:        jobID,
			}
			if templateFile != "" {
				tmpl, err := readJSONFile(templateFile)
				if err != nil {
					return err
				}
				input.PromptTemplate = unwrap(tmpl, "prompt_template")
			}

			variant := pdr.Tagged
			if untagged {
				variant = pdr.Untagged
			}

			h := pdr.NewHandler(pdr.LoadConfig(), variant, opts.log)
			out, err := h.Execute(commandContext(cmd), input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&responseFile, "response", "", "JSON file with the chat completions response")
	cmd.Flags().StringVar(&templateFile, "template", "", "optional prompt template file")
	cmd.Flags().StringVar(&jobID, "job-id", "", "job id for the tagged draft")
	cmd.Flags().BoolVar(&untagged, "untagged", false, "omit job_id from the draft")
	_ = cmd.MarkFlagRequired("response")
	return cmd
}
